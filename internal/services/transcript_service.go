package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/call"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	pgrepo "github.com/shubhamsharmax50/ai-mock-interviewer/internal/repositories/postgres"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

// ArchiveMeta is the session context stored on every archived row's metadata
// column. It is what distinguishes a generation call's log from a real
// interview attempt when rows are inspected later.
type ArchiveMeta struct {
	Mode       string `json:"mode"`
	WorkflowID string `json:"workflowId,omitempty"`
}

type TranscriptService interface {
	// Archive stores the finished session's transcript, one row per entry,
	// keeping the append order as Seq.
	Archive(ctx context.Context, interviewID, userID string, meta ArchiveMeta, entries []call.Entry) error
	ListByInterview(ctx context.Context, interviewID, userID string) ([]models.TranscriptLog, error)
}

type transcriptService struct {
	transcripts pgrepo.TranscriptRepository
}

func NewTranscriptService(transcripts pgrepo.TranscriptRepository) TranscriptService {
	return &transcriptService{transcripts: transcripts}
}

func (s *transcriptService) Archive(ctx context.Context, interviewID, userID string, meta ArchiveMeta, entries []call.Entry) error {
	const op = "TranscriptService.Archive"

	if interviewID == "" || userID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "interview_id and user_id are required", nil)
	}
	if len(entries) == 0 {
		return nil
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to encode session metadata", err)
	}

	now := time.Now().UTC()
	rows := make([]models.TranscriptLog, len(entries))
	for i, e := range entries {
		rows[i] = models.TranscriptLog{
			ID:          uuid.NewString(),
			InterviewID: interviewID,
			UserID:      userID,
			Seq:         i,
			Role:        e.Role,
			Content:     e.Content,
			Metadata:    datatypes.JSON(metaJSON),
			CreatedAt:   now,
		}
	}

	if err := s.transcripts.InsertBatch(ctx, rows); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to archive transcript", err)
	}
	return nil
}

func (s *transcriptService) ListByInterview(ctx context.Context, interviewID, userID string) ([]models.TranscriptLog, error) {
	const op = "TranscriptService.ListByInterview"

	if interviewID == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "interview_id and user_id are required", nil)
	}

	rows, err := s.transcripts.ListByInterview(ctx, interviewID, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcript", err)
	}
	return rows, nil
}
