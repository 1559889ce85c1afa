package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string, opts ...option.ClientOption) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	m := c.GenerativeModel(modelName)
	m.GenerationConfig.ResponseMIMEType = "application/json"
	return &VertexGemini{client: c, model: m}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) GenerateQuestions(ctx context.Context, spec QuestionSpec) ([]string, error) {
	prompt := fmt.Sprintf(`You are a professional hiring manager. Generate clear, concise interview questions.

Generate exactly %d questions for a %s %s interview.
Focus: %s.
Tech Stack: %s.

Respond with a JSON object of the form {"questions": ["...", "..."]} and nothing else.`,
		spec.Amount, spec.Level, spec.Role, spec.Type, spec.TechStack)

	text, err := v.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decode questions response: %w", err)
	}
	return out.Questions, nil
}

func (v *VertexGemini) GenerateFeedback(ctx context.Context, transcript string) (*FeedbackDraft, error) {
	prompt := fmt.Sprintf(`You are a professional interviewer analyzing a mock interview. Evaluate the candidate based on structured categories.
Be thorough and detailed in your analysis. Don't be lenient with the candidate. If there are mistakes or areas for improvement, point them out.

Transcript:
%s

Score the candidate from 0 to 100 in the following areas, using these exact category names:
- Communication Skills: clarity, articulation, structured responses.
- Technical Knowledge: understanding of key concepts for the role.
- Problem Solving: ability to analyze problems and propose solutions.
- Cultural & Role Fit: alignment with company values and job role.
- Confidence & Clarity: confidence in responses, engagement, and clarity.

Respond with a JSON object of the form
{"totalScore": 0, "categoryScores": [{"name": "...", "score": 0, "comment": "..."}], "strengths": ["..."], "areasForImprovement": ["..."], "finalAssessment": "..."}
and nothing else.`, transcript)

	text, err := v.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var draft FeedbackDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("decode feedback response: %w", err)
	}
	return &draft, nil
}

func (v *VertexGemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}

	text := stripFences(sb.String())
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// emit even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
