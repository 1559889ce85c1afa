package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/call"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/services"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

type FeedbackHandler struct {
	svc services.FeedbackService
}

func NewFeedbackHandler(svc services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

type CreateFeedbackRequest struct {
	InterviewID string       `json:"interviewId" binding:"required"`
	Transcript  []call.Entry `json:"transcript" binding:"required"`
}

// Create accepts a transcript from clients that drive the voice call
// themselves. The result is the typed {success, feedbackId} contract; a
// failed attempt is a 200 with success=false, never an exception.
func (h *FeedbackHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "FeedbackHandler.Create", "invalid request body", err))
		return
	}

	res := h.svc.CreateFeedback(c.Request.Context(), req.InterviewID, userID, req.Transcript)
	c.JSON(http.StatusOK, res)
}

// ForInterview returns the single feedback for (interview, caller), or null
// when none exists — the client renders an empty state.
func (h *FeedbackHandler) ForInterview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fb, err := h.svc.ForInterview(c.Request.Context(), c.Param("interview_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": fb})
}
