package models

import (
	"time"

	"gorm.io/datatypes"
)

// TranscriptLog is one archived utterance of a finished session. Rows are
// written in a single batch after the session reaches its terminal state and
// are ordered by Seq (the append order during the call).
type TranscriptLog struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	InterviewID string         `gorm:"column:interview_id;type:text;index" json:"interviewId"`
	UserID      string         `gorm:"column:user_id;type:uuid;index" json:"userId"`
	Seq         int            `gorm:"column:seq" json:"seq"`
	Role        string         `gorm:"column:role;type:text" json:"role"` // user | system | assistant
	Content     string         `gorm:"column:content;type:text" json:"content"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamptz" json:"createdAt"`
}

func (TranscriptLog) TableName() string { return "transcript_logs" }
