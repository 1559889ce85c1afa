package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/services"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

// GenerateHandler serves the public question-generation endpoint. Its
// response shape ({success, ...}) is an external contract for cross-origin
// callers, so it does not go through writeError.
type GenerateHandler struct {
	svc services.InterviewService
}

func NewGenerateHandler(svc services.InterviewService) *GenerateHandler {
	return &GenerateHandler{svc: svc}
}

type GenerateRequest struct {
	Type      string      `json:"type"`
	Role      string      `json:"role"`
	Level     string      `json:"level"`
	TechStack string      `json:"techstack"`
	Amount    json.Number `json:"amount"`
	UserID    string      `json:"userid"`
}

func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
		return
	}

	if req.Type == "" || req.Role == "" || req.Level == "" || req.TechStack == "" || req.Amount == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
		return
	}

	amount, err := req.Amount.Int64()
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "amount must be a positive integer"})
		return
	}

	iv, err := h.svc.GenerateQuestions(c.Request.Context(), services.GenerateQuestionsInput{
		Type:      req.Type,
		Role:      req.Role,
		Level:     req.Level,
		TechStack: req.TechStack,
		Amount:    int(amount),
		UserID:    req.UserID,
	})
	if err != nil {
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing required fields"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "questions": iv.Questions})
}

func (h *GenerateHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Interview Generation API",
		"usage":   "Use POST method with type, role, level, techstack, amount, and userid",
	})
}
