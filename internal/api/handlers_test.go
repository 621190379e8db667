package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SVatsa12/teamforge/internal/aggregator"
	"github.com/SVatsa12/teamforge/internal/allocator"
	"github.com/SVatsa12/teamforge/internal/api"
	"github.com/SVatsa12/teamforge/internal/config"
	"github.com/SVatsa12/teamforge/internal/domain"
	"github.com/SVatsa12/teamforge/internal/logger"
	"github.com/SVatsa12/teamforge/internal/repository"
	"github.com/SVatsa12/teamforge/internal/sources"
)

type fakeAllocator struct {
	allocateResult *domain.AllocationResult
	allocateErr    error
	assignments    []domain.Assignment
	listErr        error
	unassignResult *domain.Assignment
	unassignErr    error
	lastRequest    allocator.Request
}

func (f *fakeAllocator) Allocate(_ context.Context, req allocator.Request) (*domain.AllocationResult, error) {
	f.lastRequest = req
	return f.allocateResult, f.allocateErr
}

func (f *fakeAllocator) Unassign(_ context.Context, _ string) (*domain.Assignment, error) {
	return f.unassignResult, f.unassignErr
}

func (f *fakeAllocator) ListAssignments(_ context.Context) ([]domain.Assignment, error) {
	return f.assignments, f.listErr
}

type fakeAggregator struct {
	result    *aggregator.EventsResult
	srcs      []sources.Source
	lastQuery aggregator.Query
}

func (f *fakeAggregator) Events(_ context.Context, q aggregator.Query) *aggregator.EventsResult {
	f.lastQuery = q
	return f.result
}

func (f *fakeAggregator) Sources() []sources.Source {
	return f.srcs
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Address: ":0"},
		Aggregator: config.AggregatorConfig{
			Fetch: config.FetchConfig{RequestTimeout: 5 * time.Second},
		},
	}
}

func newTestRouter(alloc *fakeAllocator, agg *fakeAggregator) http.Handler {
	return api.SetupRouter(logger.NewNopLogger(), alloc, agg, testConfig())
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAllocator{}, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListEvents(t *testing.T) {
	t.Parallel()

	agg := &fakeAggregator{result: &aggregator.EventsResult{
		Source: aggregator.ResultCache,
		Count:  1,
		Items:  []domain.NormalizedEvent{{ID: "1", Title: "Hackathon"}},
	}}

	router := newTestRouter(&fakeAllocator{}, agg)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/events?q=hack&upcoming=true&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, aggregator.Query{Q: "hack", UpcomingOnly: true, Limit: 5}, agg.lastQuery)

	var body aggregator.EventsResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, aggregator.ResultCache, body.Source)
	assert.Equal(t, 1, body.Count)
}

func TestListEvents_BadLimit(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAllocator{}, &fakeAggregator{result: &aggregator.EventsResult{}})

	for _, limit := range []string{"abc", "-1", "2.5"} {
		rec := doRequest(t, router, http.MethodGet, "/api/v1/events?limit="+limit, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestListSources(t *testing.T) {
	t.Parallel()

	agg := &fakeAggregator{srcs: []sources.Source{
		{ID: "devpost", Name: "Devpost", Type: sources.TypeHTML, URL: "https://devpost.com/hackathons"},
		{ID: "kontests", Name: "Kontests", Type: sources.TypeRSS, URL: "https://kontests.example.com/feed"},
	}}

	router := newTestRouter(&fakeAllocator{}, agg)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/sources", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Sources []map[string]string `json:"sources"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "devpost", body.Sources[0]["id"])
}

func TestAllocate(t *testing.T) {
	t.Parallel()

	alloc := &fakeAllocator{allocateResult: &domain.AllocationResult{
		RequiredSkills: []string{"go", "sql"},
		TeamSize:       2,
		Candidates: []domain.Candidate{
			{UserID: "u1", Name: "Ada", CompositeScore: 107.6},
		},
	}}

	router := newTestRouter(alloc, &fakeAggregator{})

	payload := []byte(`{"project_skills":["go","sql"],"team_size":2}`)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/allocate", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"go", "sql"}, alloc.lastRequest.ProjectSkills)
	assert.Equal(t, 2, alloc.lastRequest.TeamSize)

	var body domain.AllocationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Candidates, 1)
	assert.Equal(t, "Ada", body.Candidates[0].Name)
}

func TestAllocate_InvalidBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAllocator{}, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/allocate", []byte(`{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAllocate_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown project", fmt.Errorf("project nope: %w", repository.ErrNotFound), http.StatusNotFound},
		{"validation failure", fmt.Errorf("no skills: %w", allocator.ErrValidation), http.StatusBadRequest},
		{"internal failure", errors.New("store exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(&fakeAllocator{allocateErr: tt.err}, &fakeAggregator{})

			rec := doRequest(t, router, http.MethodPost, "/api/v1/allocate", []byte(`{"project_skills":["go"]}`))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestListAssignments(t *testing.T) {
	t.Parallel()

	alloc := &fakeAllocator{assignments: []domain.Assignment{
		{ID: "a1", UserID: "u1"},
		{ID: "a2", UserID: "u2"},
	}}

	router := newTestRouter(alloc, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/assignments", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Assignments []domain.Assignment `json:"assignments"`
		Count       int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestListAssignments_StoreError(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAllocator{listErr: errors.New("db gone")}, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/assignments", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUnassign(t *testing.T) {
	t.Parallel()

	alloc := &fakeAllocator{unassignResult: &domain.Assignment{ID: "a1", UserID: "u1"}}

	router := newTestRouter(alloc, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/assignments/a1", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body domain.Assignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a1", body.ID)
}

func TestUnassign_NotFound(t *testing.T) {
	t.Parallel()

	alloc := &fakeAllocator{
		unassignErr: fmt.Errorf("assignment missing: %w", repository.ErrNotFound),
	}

	router := newTestRouter(alloc, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/assignments/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugFetch(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusTeapot)
		w.Write(bytes.Repeat([]byte("x"), 3000))
	}))
	defer upstream.Close()

	router := newTestRouter(&fakeAllocator{}, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/debug/fetch?url="+upstream.URL, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status      int               `json:"status"`
		Headers     map[string]string `json:"headers"`
		BodyPreview string            `json:"body_preview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTeapot, body.Status)
	assert.Equal(t, "yes", body.Headers["X-Test"])
	assert.Len(t, body.BodyPreview, 2000, "preview is capped")
}

func TestDebugFetch_MissingURL(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&fakeAllocator{}, &fakeAggregator{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/debug/fetch", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}

	router := api.SetupRouter(logger.NewNopLogger(), &fakeAllocator{}, &fakeAggregator{}, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/events", nil)
	req.Header.Set("Origin", "http://localhost:3000")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnknownOrigin(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}

	router := api.SetupRouter(logger.NewNopLogger(), &fakeAllocator{}, &fakeAggregator{}, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
