package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paulosgsf/typingmind-webscraper/internal/config"
	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
	"github.com/paulosgsf/typingmind-webscraper/internal/dispatcher"
	queuememory "github.com/paulosgsf/typingmind-webscraper/internal/queue/memory"
	storememory "github.com/paulosgsf/typingmind-webscraper/internal/store/memory"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() (string, error) {
	g.n++
	return strings.Repeat("0", 7) + string(rune('a'+g.n-1)), nil
}

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{Port: 8080},
		Crawl: config.CrawlConfig{
			Workers: 1, QueueDepth: 8, MaxPagesDefault: 10, MaxPagesLimit: 50,
			DefaultProfile: "documentation", RateLimitMs: 1000, MinContentChars: 50,
		},
		HTTP: config.HTTPConfig{TimeoutSeconds: 10, MaxRedirects: 5},
	}
}

func newTestServer(t *testing.T, cfg config.Config) (*Server, *storememory.JobStore) {
	t.Helper()
	store := storememory.NewJobStore()
	queue := queuememory.NewQueue(cfg.Crawl.QueueDepth)
	dispatch := dispatcher.New(queue, nil, nil)
	return NewServer(store, dispatch, &seqIDGen{}, utcClock{}, nil, cfg), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSubmitCrawlAcceptsValidRequest(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, testConfig())
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/v1/crawls", map[string]any{
		"seed_url": "https://example.com/docs/",
		"profile":  "documentation",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["job_id"])

	job, err := store.GetJob(context.Background(), resp["job_id"])
	require.NoError(t, err)
	require.Equal(t, crawler.JobStatusQueued, job.Status)
	require.Equal(t, 10, job.Parameters.MaxPages, "default max_pages applies")
	require.Equal(t, 1000, job.Parameters.RateLimitMs, "default rate limit applies")
}

func TestSubmitCrawlValidation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testConfig())
	handler := srv.Handler()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing seed", map[string]any{"profile": "documentation"}},
		{"unknown profile", map[string]any{"seed_url": "https://example.com/", "profile": "nope"}},
		{"max pages over limit", map[string]any{"seed_url": "https://example.com/", "max_pages": 500}},
		{"max pages zero", map[string]any{"seed_url": "https://example.com/", "max_pages": 0}},
		{"negative rate limit", map[string]any{"seed_url": "https://example.com/", "rate_limit_ms": -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doJSON(t, handler, http.MethodPost, "/v1/crawls", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/crawls", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrawlStatusAndResultLifecycle(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, testConfig())
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/v1/crawls", map[string]any{
		"seed_url": "https://example.com/docs/",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	jobID := resp["job_id"]

	rec = doJSON(t, handler, http.MethodGet, "/v1/crawls/"+jobID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), string(crawler.JobStatusQueued))

	// No report yet: result endpoint reports a conflict.
	rec = doJSON(t, handler, http.MethodGet, "/v1/crawls/"+jobID+"/result", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	report := crawler.Report{
		Summary:          crawler.Summary{BaseURL: "https://example.com/docs/", TotalScraped: 1, TotalSuccessful: 1},
		ConsolidatedText: "extracted text",
	}
	require.NoError(t, store.SaveReport(context.Background(), jobID, report))
	require.NoError(t, store.UpdateJobStatus(
		context.Background(), jobID, crawler.JobStatusSucceeded, "", crawler.JobCounters{PagesSucceeded: 1}))

	rec = doJSON(t, handler, http.MethodGet, "/v1/crawls/"+jobID+"/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result crawler.JobResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "extracted text", result.Report.ConsolidatedText)
	require.Equal(t, crawler.JobStatusSucceeded, result.Job.Status)
}

func TestCrawlStatusUnknownJob(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testConfig())
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/v1/crawls/ghost/status", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelCrawl(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, testConfig())
	handler := srv.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/v1/crawls", map[string]any{
		"seed_url": "https://example.com/docs/",
	})
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	jobID := resp["job_id"]

	// Queued jobs cancel directly.
	rec = doJSON(t, handler, http.MethodPost, "/v1/crawls/"+jobID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job, err := store.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	require.Equal(t, crawler.JobStatusCanceled, job.Status)

	// Canceling a terminal job conflicts.
	rec = doJSON(t, handler, http.MethodPost, "/v1/crawls/"+jobID+"/cancel", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/v1/crawls/ghost/cancel", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpointsAndMetrics(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testConfig())
	handler := srv.Handler()

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := doJSON(t, handler, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}

func TestAPIKeyMiddlewareGuardsV1Routes(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = "secret"
	srv, _ := newTestServer(t, cfg)
	handler := srv.Handler()

	// Health stays open.
	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := map[string]any{"seed_url": "https://example.com/docs/"}
	rec = doJSON(t, handler, http.MethodPost, "/v1/crawls", body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, "/v1/crawls", &buf)
	req.Header.Set("X-API-Key", "secret")
	authed := httptest.NewRecorder()
	handler.ServeHTTP(authed, req)
	require.Equal(t, http.StatusAccepted, authed.Code)
}

func TestRequestIDHeaderSet(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testConfig())
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
