package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/services"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

type InterviewHandler struct {
	interviews  services.InterviewService
	transcripts services.TranscriptService
}

func NewInterviewHandler(interviews services.InterviewService, transcripts services.TranscriptService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, transcripts: transcripts}
}

// interviewView adds the cosmetic "Mixed" type label next to the raw type.
type interviewView struct {
	models.Interview
	NormalizedType string `json:"normalizedType"`
}

func toViews(rows []models.Interview) []interviewView {
	out := make([]interviewView, len(rows))
	for i, iv := range rows {
		out[i] = interviewView{Interview: iv, NormalizedType: iv.DisplayType()}
	}
	return out
}

// ListMine returns the caller's interviews, newest first. An empty or failed
// read renders as an empty list.
func (h *InterviewHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.interviews.ByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interviews": toViews(rows)})
}

// ListLatest returns finalized interviews from other users.
func (h *InterviewHandler) ListLatest(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	rows, err := h.interviews.Latest(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"interviews": toViews(rows)})
}

func (h *InterviewHandler) GetByID(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	iv, err := h.interviews.ByID(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if iv == nil {
		writeError(c, utils.E(utils.CodeNotFound, "InterviewHandler.GetByID", "interview not found", nil))
		return
	}

	c.JSON(http.StatusOK, interviewView{Interview: *iv, NormalizedType: iv.DisplayType()})
}

// Transcript returns the archived session log for one of the caller's
// interviews, in utterance order.
func (h *InterviewHandler) Transcript(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.transcripts.ListByInterview(c.Request.Context(), c.Param("interview_id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcript": rows})
}
