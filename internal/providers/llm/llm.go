package llm

import "context"

// QuestionSpec describes one question-generation request.
type QuestionSpec struct {
	Type      string // focus: behavioural | technical | mixed
	Role      string
	Level     string
	TechStack string // raw comma-separated input, passed through to the prompt
	Amount    int
}

// CategoryScore mirrors one scored category in the model output.
type CategoryScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// FeedbackDraft is the raw structured evaluation returned by the model,
// before validation and clamping by the feedback service.
type FeedbackDraft struct {
	TotalScore          int             `json:"totalScore"`
	CategoryScores      []CategoryScore `json:"categoryScores"`
	Strengths           []string        `json:"strengths"`
	AreasForImprovement []string        `json:"areasForImprovement"`
	FinalAssessment     string          `json:"finalAssessment"`
}

type Provider interface {
	GenerateQuestions(ctx context.Context, spec QuestionSpec) ([]string, error)
	GenerateFeedback(ctx context.Context, transcript string) (*FeedbackDraft, error)
	Close() error
}
