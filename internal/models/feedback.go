package models

import "time"

// The five fixed evaluation categories, in report order.
const (
	CategoryCommunication  = "Communication Skills"
	CategoryTechnical      = "Technical Knowledge"
	CategoryProblemSolving = "Problem Solving"
	CategoryCulturalFit    = "Cultural & Role Fit"
	CategoryConfidence     = "Confidence & Clarity"
)

func FeedbackCategories() []string {
	return []string{
		CategoryCommunication,
		CategoryTechnical,
		CategoryProblemSolving,
		CategoryCulturalFit,
		CategoryConfidence,
	}
}

type CategoryScore struct {
	Name    string `bson:"name" json:"name"`
	Score   int    `bson:"score" json:"score"` // 0-100
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`
}

// Feedback is the scored evaluation of one completed interview session,
// stored in the feedback collection. Written once, read-only afterwards.
type Feedback struct {
	ID                  string          `bson:"_id" json:"id"`
	InterviewID         string          `bson:"interview_id" json:"interviewId"`
	UserID              string          `bson:"user_id" json:"userId"`
	TotalScore          int             `bson:"total_score" json:"totalScore"`
	CategoryScores      []CategoryScore `bson:"category_scores" json:"categoryScores"`
	Strengths           []string        `bson:"strengths" json:"strengths"`
	AreasForImprovement []string        `bson:"areas_for_improvement" json:"areasForImprovement"`
	FinalAssessment     string          `bson:"final_assessment" json:"finalAssessment"`
	CreatedAt           time.Time       `bson:"created_at" json:"createdAt"`
}
