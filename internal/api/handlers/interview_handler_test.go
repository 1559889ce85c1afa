package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/call"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/models"
	"github.com/shubhamsharmax50/ai-mock-interviewer/internal/services"
)

type stubTranscriptService struct {
	mu       sync.Mutex
	rows     []models.TranscriptLog
	err      error
	archived []call.Entry
	gotMeta  services.ArchiveMeta
}

func (s *stubTranscriptService) Archive(ctx context.Context, interviewID, userID string, meta services.ArchiveMeta, entries []call.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived = entries
	s.gotMeta = meta
	return nil
}

func (s *stubTranscriptService) ListByInterview(ctx context.Context, interviewID, userID string) ([]models.TranscriptLog, error) {
	return s.rows, s.err
}

// asUser injects the authenticated user the way the JWT middleware does.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

type listLatestRecorder struct {
	stubInterviewService
	gotLimit   int
	gotExclude string
	rows       []models.Interview
}

func (s *listLatestRecorder) Latest(ctx context.Context, excludeUserID string, limit int) ([]models.Interview, error) {
	s.gotExclude = excludeUserID
	s.gotLimit = limit
	return s.rows, nil
}

func interviewRouter(svc *listLatestRecorder, tr *stubTranscriptService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewInterviewHandler(svc, tr)
	g := r.Group("/", asUser(userID))
	g.GET("/interviews/latest", h.ListLatest)
	g.GET("/interviews/:interview_id", h.GetByID)
	g.GET("/interviews/:interview_id/transcript", h.Transcript)
	return r
}

func TestListLatestLimitParsing(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{"default", "", 20},
		{"explicit", "?limit=5", 5},
		{"zero falls back", "?limit=0", 20},
		{"negative falls back", "?limit=-1", 20},
		{"over cap falls back", "?limit=500", 20},
		{"garbage falls back", "?limit=abc", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &listLatestRecorder{}
			r := interviewRouter(svc, &stubTranscriptService{}, "u-1")

			req := httptest.NewRequest(http.MethodGet, "/interviews/latest"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantLimit, svc.gotLimit)
			assert.Equal(t, "u-1", svc.gotExclude, "caller is always excluded")
		})
	}
}

func TestListLatestNormalizedType(t *testing.T) {
	svc := &listLatestRecorder{rows: []models.Interview{
		{ID: "iv-1", Type: "mixed"},
		{ID: "iv-2", Type: "Technical"},
	}}
	r := interviewRouter(svc, &stubTranscriptService{}, "u-1")

	req := httptest.NewRequest(http.MethodGet, "/interviews/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Interviews []struct {
			ID             string `json:"id"`
			Type           string `json:"type"`
			NormalizedType string `json:"normalizedType"`
		} `json:"interviews"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Interviews, 2)
	assert.Equal(t, "mixed", resp.Interviews[0].Type, "stored type untouched")
	assert.Equal(t, "Mixed", resp.Interviews[0].NormalizedType)
	assert.Equal(t, "Technical", resp.Interviews[1].NormalizedType)
}

func TestGetByIDNotFound(t *testing.T) {
	// the stub service returns nil, nil — the query layer's degraded shape
	svc := &listLatestRecorder{}
	r := interviewRouter(svc, &stubTranscriptService{}, "u-1")

	req := httptest.NewRequest(http.MethodGet, "/interviews/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", string(resp.Code))
}

func TestInterviewEndpointsRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewInterviewHandler(&listLatestRecorder{}, &stubTranscriptService{})
	r.GET("/interviews/latest", h.ListLatest) // no user in context

	req := httptest.NewRequest(http.MethodGet, "/interviews/latest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTranscriptEndpoint(t *testing.T) {
	tr := &stubTranscriptService{rows: []models.TranscriptLog{
		{Seq: 0, Role: "assistant", Content: "q"},
		{Seq: 1, Role: "user", Content: "a"},
	}}
	r := interviewRouter(&listLatestRecorder{}, tr, "u-1")

	req := httptest.NewRequest(http.MethodGet, "/interviews/iv-1/transcript", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Transcript []models.TranscriptLog `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transcript, 2)
	assert.Equal(t, "assistant", resp.Transcript[0].Role)
}
