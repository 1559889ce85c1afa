package services

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/cache"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/providers/llm"
	mongorepo "github.com/shubhamsharmax50/ai-mock-interviewer/internal/repositories/mongo"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/storage"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/utils"
)

// coverPool is the fixed set of interview cover images.
var coverPool = []string{
	"adobe.png", "amazon.png", "facebook.png", "hostinger.png",
	"pinterest.png", "quora.png", "reddit.png", "skype.png",
	"spotify.png", "telegram.png", "tiktok.png", "yahoo.png",
}

type GenerateQuestionsInput struct {
	Type      string
	Role      string
	Level     string
	TechStack string // comma-separated
	Amount    int
	UserID    string
}

type InterviewService interface {
	// GenerateQuestions creates one finalized Interview with a fresh question
	// list. Nothing is persisted if generation fails or returns no questions.
	GenerateQuestions(ctx context.Context, in GenerateQuestionsInput) (*models.Interview, error)
	ByUser(ctx context.Context, userID string) ([]models.Interview, error)
	Latest(ctx context.Context, excludeUserID string, limit int) ([]models.Interview, error)
	ByID(ctx context.Context, id string) (*models.Interview, error)
}

type interviewService struct {
	interviews mongorepo.InterviewRepository
	gen        llm.Provider
	cache      cache.Cache
	covers     storage.CoverResolver
	log        *logrus.Logger
}

func NewInterviewService(interviews mongorepo.InterviewRepository, gen llm.Provider, c cache.Cache, covers storage.CoverResolver, log *logrus.Logger) InterviewService {
	if covers == nil {
		covers = storage.StaticCovers{}
	}
	if log == nil {
		log = logrus.New()
	}
	return &interviewService{interviews: interviews, gen: gen, cache: c, covers: covers, log: log}
}

func (s *interviewService) GenerateQuestions(ctx context.Context, in GenerateQuestionsInput) (*models.Interview, error) {
	const op = "InterviewService.GenerateQuestions"

	if in.Type == "" || in.Role == "" || in.Level == "" || in.TechStack == "" || in.UserID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "type, role, level, techstack, amount, and userid are required", nil)
	}
	if in.Amount <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "amount must be a positive integer", nil)
	}

	questions, err := s.gen.GenerateQuestions(ctx, llm.QuestionSpec{
		Type:      in.Type,
		Role:      in.Role,
		Level:     in.Level,
		TechStack: in.TechStack,
		Amount:    in.Amount,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "question generation failed", err)
	}
	if len(questions) == 0 {
		return nil, utils.E(utils.CodeInternal, op, "no questions generated", nil)
	}

	iv := &models.Interview{
		ID:         uuid.NewString(),
		Role:       in.Role,
		Type:       in.Type,
		Level:      in.Level,
		TechStack:  splitTechStack(in.TechStack),
		Questions:  questions,
		UserID:     in.UserID,
		Finalized:  true,
		CoverImage: s.pickCover(ctx),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.interviews.Insert(ctx, iv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to persist interview", err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, userInterviewsKey(in.UserID))
	}
	return iv, nil
}

// splitTechStack splits the comma-separated input, trimming surrounding
// whitespace from each element. Order is preserved, empty elements included.
func splitTechStack(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func (s *interviewService) pickCover(ctx context.Context) string {
	name := coverPool[rand.Intn(len(coverPool))]
	url, err := s.covers.Resolve(ctx, name)
	if err != nil {
		s.log.WithError(err).WithField("cover", name).Warn("cover resolve failed; using static path")
		url, _ = storage.StaticCovers{}.Resolve(ctx, name)
	}
	return url
}

// Query layer: read-only, and a failed or empty read degrades to an empty
// result so callers render an empty state instead of an error page.

func (s *interviewService) ByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	const op = "InterviewService.ByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	key := userInterviewsKey(userID)
	var cached []models.Interview
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("interview list query failed")
		return nil, nil
	}
	s.cacheSet(ctx, key, rows)
	return rows, nil
}

func (s *interviewService) Latest(ctx context.Context, excludeUserID string, limit int) ([]models.Interview, error) {
	const op = "InterviewService.Latest"

	if excludeUserID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if limit <= 0 {
		limit = 20
	}

	key := latestInterviewsKey(excludeUserID, limit)
	var cached []models.Interview
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.interviews.ListLatest(ctx, excludeUserID, limit)
	if err != nil {
		s.log.WithError(err).WithField("exclude_user_id", excludeUserID).Error("latest interviews query failed")
		return nil, nil
	}
	s.cacheSet(ctx, key, rows)
	return rows, nil
}

func (s *interviewService) ByID(ctx context.Context, id string) (*models.Interview, error) {
	const op = "InterviewService.ByID"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}

	iv, err := s.interviews.GetByID(ctx, id)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("interview_id", id).Error("interview lookup failed")
		return nil, nil
	}
	return iv, nil
}

const listCacheTTL = 30 * time.Second

func (s *interviewService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	return hit
}

func (s *interviewService) cacheSet(ctx context.Context, key string, val any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, val, listCacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func userInterviewsKey(userID string) string {
	return "interviews:user:" + userID
}

func latestInterviewsKey(excludeUserID string, limit int) string {
	return "interviews:latest:" + excludeUserID + ":" + strconv.Itoa(limit)
}
