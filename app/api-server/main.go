package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/shubhamsharmax50/ai-mock-interviewer/config"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/api/handlers"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/api/routes"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/cache"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/logger"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/llm"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/voice"
	mongorepo "github.com/shubhamsharmax50/ai-mock-interviewer/internal/repositories/mongo"
	pgrepo "github.com/shubhamsharmax50/ai-mock-interviewer/internal/repositories/postgres"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/services"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/storage"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()
	ctx := context.Background()

	// Document store (interviews, feedback)
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	// Relational store (users, transcript archive)
	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.PostgresDB.AutoMigrate(&models.User{}, &models.TranscriptLog{}); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}

	// Cache
	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}

	// LLM provider
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT environment variable is not set")
	}
	location := os.Getenv("VERTEX_LOCATION")
	if location == "" {
		location = "us-central1"
	}
	var gopts []option.ClientOption
	if f := os.Getenv("GOOGLE_CREDENTIALS_FILE"); f != "" {
		gopts = append(gopts, option.WithCredentialsFile(f))
	}
	gemini, err := llm.NewVertexGemini(ctx, projectID, location, os.Getenv("VERTEX_MODEL"), gopts...)
	if err != nil {
		log.Fatalf("Vertex init error: %v", err)
	}
	defer gemini.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	// Optional GCS-backed cover images
	var covers storage.CoverResolver = storage.StaticCovers{}
	if bucket := os.Getenv("GCS_COVERS_BUCKET"); bucket != "" {
		gcsCovers, err := storage.NewGCSCovers(ctx, bucket, gopts...)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcsCovers.Close()
		covers = gcsCovers
	}

	db := config.MongoDatabase()
	interviewRepo := mongorepo.NewInterviewRepo(db)
	feedbackRepo := mongorepo.NewFeedbackRepo(db)
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	transcriptRepo := pgrepo.NewTranscriptRepo(config.PostgresDB)

	rcache := cache.NewRedisCache(config.RedisClient)

	interviewSvc := services.NewInterviewService(interviewRepo, gemini, rcache, covers, l)
	feedbackSvc := services.NewFeedbackService(feedbackRepo, gemini, l)
	transcriptSvc := services.NewTranscriptService(transcriptRepo)
	authSvc := services.NewAuthService(userRepo, jwtSecret, 0)

	vapiCfg := voice.VapiConfig{
		URL:   os.Getenv("VAPI_WS_URL"),
		Token: os.Getenv("VAPI_WEB_TOKEN"),
	}
	newVoice := func() voice.Client { return voice.NewVapiWS(vapiCfg) }

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Auth:        handlers.NewAuthHandler(authSvc),
		Generate:    handlers.NewGenerateHandler(interviewSvc),
		Interview:   handlers.NewInterviewHandler(interviewSvc, transcriptSvc),
		Feedback:    handlers.NewFeedbackHandler(feedbackSvc),
		Call:        handlers.NewCallHandler(newVoice, feedbackSvc, transcriptSvc, os.Getenv("VAPI_WORKFLOW_ID"), l),
		JWTSecret:   jwtSecret,
		AllowOrigin: os.Getenv("CORS_ALLOW_ORIGIN"),
		Log:         l,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
