package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
)

type TranscriptRepository interface {
	InsertBatch(ctx context.Context, rows []models.TranscriptLog) error
	ListByInterview(ctx context.Context, interviewID, userID string) ([]models.TranscriptLog, error)
}

type transcriptRepo struct {
	db *gorm.DB
}

func NewTranscriptRepo(db *gorm.DB) TranscriptRepository {
	return &transcriptRepo{db: db}
}

func (r *transcriptRepo) InsertBatch(ctx context.Context, rows []models.TranscriptLog) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *transcriptRepo) ListByInterview(ctx context.Context, interviewID, userID string) ([]models.TranscriptLog, error) {
	var rows []models.TranscriptLog
	err := r.db.WithContext(ctx).
		Where("interview_id = ? AND user_id = ?", interviewID, userID).
		Order("seq ASC").
		Find(&rows).Error
	return rows, err
}
