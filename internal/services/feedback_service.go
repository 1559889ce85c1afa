package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/call"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/llm"
	mongorepo "github.com/shubhamsharmax50/ai-mock-interviewer/internal/repositories/mongo"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

// FeedbackResult is the typed outcome of a feedback submission. Failure is a
// value the caller branches on, never a panic or an unhandled error.
type FeedbackResult struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedbackId,omitempty"`
}

type FeedbackService interface {
	// CreateFeedback evaluates the transcript across the five fixed categories
	// and persists one Feedback document. Duplicate submissions create
	// duplicate records; there is no dedup and no retry.
	CreateFeedback(ctx context.Context, interviewID, userID string, entries []call.Entry) FeedbackResult
	// ForInterview returns the feedback for (interviewID, userID), or nil when
	// none exists or the read fails (empty-state render).
	ForInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error)
}

type feedbackService struct {
	feedback mongorepo.FeedbackRepository
	gen      llm.Provider
	log      *logrus.Logger
}

func NewFeedbackService(feedback mongorepo.FeedbackRepository, gen llm.Provider, log *logrus.Logger) *feedbackService {
	if log == nil {
		log = logrus.New()
	}
	return &feedbackService{feedback: feedback, gen: gen, log: log}
}

func (s *feedbackService) CreateFeedback(ctx context.Context, interviewID, userID string, entries []call.Entry) FeedbackResult {
	log := s.log.WithFields(logrus.Fields{"interview_id": interviewID, "user_id": userID})

	if interviewID == "" || userID == "" {
		log.Error("feedback request missing identifiers")
		return FeedbackResult{Success: false}
	}

	draft, err := s.gen.GenerateFeedback(ctx, FormatTranscript(entries))
	if err != nil {
		log.WithError(err).Error("feedback generation failed")
		return FeedbackResult{Success: false}
	}

	scores, err := normalizeCategoryScores(draft.CategoryScores)
	if err != nil {
		log.WithError(err).Error("feedback output malformed")
		return FeedbackResult{Success: false}
	}

	fb := &models.Feedback{
		ID:                  uuid.NewString(),
		InterviewID:         interviewID,
		UserID:              userID,
		TotalScore:          clampScore(draft.TotalScore),
		CategoryScores:      scores,
		Strengths:           draft.Strengths,
		AreasForImprovement: draft.AreasForImprovement,
		FinalAssessment:     draft.FinalAssessment,
		CreatedAt:           time.Now().UTC(),
	}

	if err := s.feedback.Insert(ctx, fb); err != nil {
		log.WithError(err).Error("failed to persist feedback")
		return FeedbackResult{Success: false}
	}

	return FeedbackResult{Success: true, FeedbackID: fb.ID}
}

// CreateFromTranscript adapts CreateFeedback to the call session's sink
// contract.
func (s *feedbackService) CreateFromTranscript(ctx context.Context, interviewID, userID string, entries []call.Entry) (string, error) {
	res := s.CreateFeedback(ctx, interviewID, userID, entries)
	if !res.Success {
		return "", errors.New("feedback creation failed")
	}
	return res.FeedbackID, nil
}

func (s *feedbackService) ForInterview(ctx context.Context, interviewID, userID string) (*models.Feedback, error) {
	const op = "FeedbackService.ForInterview"

	if interviewID == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id and user_id are required", nil)
	}

	fb, err := s.feedback.GetByInterviewAndUser(ctx, interviewID, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("interview_id", interviewID).Error("feedback lookup failed")
		return nil, nil
	}
	return fb, nil
}

// FormatTranscript renders the session log the way the evaluator expects:
// one "- role: content" line per finalized utterance, in order.
func FormatTranscript(entries []call.Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString("- ")
		sb.WriteString(e.Role)
		sb.WriteString(": ")
		sb.WriteString(e.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// normalizeCategoryScores maps the model output onto the five fixed
// categories, in report order. Any missing category makes the whole draft
// malformed.
func normalizeCategoryScores(raw []llm.CategoryScore) ([]models.CategoryScore, error) {
	byName := make(map[string]llm.CategoryScore, len(raw))
	for _, cs := range raw {
		byName[strings.ToLower(strings.TrimSpace(cs.Name))] = cs
	}

	out := make([]models.CategoryScore, 0, 5)
	for _, name := range models.FeedbackCategories() {
		cs, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, errors.New("missing category: " + name)
		}
		out = append(out, models.CategoryScore{
			Name:    name,
			Score:   clampScore(cs.Score),
			Comment: cs.Comment,
		})
	}
	return out, nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
