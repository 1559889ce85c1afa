package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/api/handlers"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/api/middleware"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Generate  *handlers.GenerateHandler
	Interview *handlers.InterviewHandler
	Feedback  *handlers.FeedbackHandler
	Call      *handlers.CallHandler

	JWTSecret   string
	AllowOrigin string
	Log         *logrus.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(d.AllowOrigin))

	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public
	r.POST("/auth/sign-up", d.Auth.SignUp)
	r.POST("/auth/sign-in", d.Auth.SignIn)

	// Cross-origin question generation (original route shape, userid in body)
	r.GET("/api/generate", d.Generate.Info)
	r.POST("/api/generate", d.Generate.Generate)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWTSecret))

	auth.GET("/auth/me", d.Auth.Me)

	auth.GET("/interviews/me", d.Interview.ListMine)
	auth.GET("/interviews/latest", d.Interview.ListLatest)
	auth.GET("/interviews/:interview_id", d.Interview.GetByID)
	auth.GET("/interviews/:interview_id/transcript", d.Interview.Transcript)
	auth.GET("/interviews/:interview_id/feedback", d.Feedback.ForInterview)

	auth.POST("/api/feedback", d.Feedback.Create)

	// WebSocket
	auth.GET("/ws/call/:interview_id", d.Call.SessionWS)
}
