// Package api exposes the HTTP interface for the scraper service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/config"
	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
	"github.com/paulosgsf/typingmind-webscraper/internal/dispatcher"
	"github.com/paulosgsf/typingmind-webscraper/internal/metrics"
	"github.com/paulosgsf/typingmind-webscraper/internal/store/memory"
)

// Server wires HTTP handlers to the dispatcher and job store.
type Server struct {
	router     chi.Router
	jobStore   *memory.JobStore
	dispatcher *dispatcher.Dispatcher
	idGen      crawler.IDGenerator
	clock      crawler.Clock
	logger     *zap.Logger
	cfg        config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	jobStore *memory.JobStore,
	dispatcher *dispatcher.Dispatcher,
	idGen crawler.IDGenerator,
	clock crawler.Clock,
	logger *zap.Logger,
	cfg config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		jobStore:   jobStore,
		dispatcher: dispatcher,
		idGen:      idGen,
		clock:      clock,
		logger:     logger,
		cfg:        cfg,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metricsMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Route("/crawls", func(r chi.Router) {
			r.Post("/", s.submitCrawl)
			r.Route("/{job_id}", func(r chi.Router) {
				r.Get("/status", s.getCrawlStatus)
				r.Get("/result", s.getCrawlResult)
				r.Post("/cancel", s.cancelCrawl)
			})
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// In-memory dependencies are always ready.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type crawlRequest struct {
	SeedURL     string `json:"seed_url"`
	MaxPages    *int   `json:"max_pages"`
	Profile     string `json:"profile"`
	RateLimitMs *int   `json:"rate_limit_ms"`
}

func (s *Server) submitCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	params, err := s.toJobParameters(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := s.enqueueJob(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusRequestTimeout
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) getCrawlStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) getCrawlResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	report, err := s.jobStore.GetReport(r.Context(), jobID)
	if err != nil {
		// Queued and running jobs have no report yet.
		writeError(w, http.StatusConflict, fmt.Sprintf("no result yet, job is %s", job.Status))
		return
	}
	writeJSON(w, http.StatusOK, crawler.JobResult{Job: job, Report: report})
}

func (s *Server) cancelCrawl(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	switch job.Status {
	case crawler.JobStatusSucceeded, crawler.JobStatusFailed, crawler.JobStatusCanceled:
		writeError(w, http.StatusConflict, fmt.Sprintf("job already %s", job.Status))
		return
	case crawler.JobStatusQueued:
		// Not yet picked up by a worker; mark terminal directly.
		if err := s.jobStore.UpdateJobStatus(
			r.Context(), jobID, crawler.JobStatusCanceled, "canceled via API", job.Counters,
		); err != nil {
			// A worker may have finished the job in the meantime.
			if errors.Is(err, memory.ErrJobFinished) {
				writeError(w, http.StatusConflict, "job already finished")
				return
			}
			writeError(w, http.StatusInternalServerError, "cancel failed")
			return
		}
	default:
		s.jobStore.Cancel(jobID)
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID, "status": string(crawler.JobStatusCanceled)})
}

func (s *Server) enqueueJob(ctx context.Context, params crawler.JobParameters) (string, error) {
	jobID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate job id: %w", err)
	}
	now := s.clock.Now()
	job := crawler.Job{
		ID:         jobID,
		Status:     crawler.JobStatusQueued,
		Submitted:  now,
		Parameters: params,
	}
	if err := s.jobStore.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	queueCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	item := crawler.QueueItem{
		JobID:     jobID,
		Params:    params,
		Submitted: now.Unix(),
	}
	if err := s.dispatcher.Enqueue(queueCtx, item); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return jobID, nil
}

func (s *Server) toJobParameters(req crawlRequest) (crawler.JobParameters, error) {
	if req.SeedURL == "" {
		return crawler.JobParameters{}, errors.New("seed_url required")
	}
	maxPages := valueOrDefault(req.MaxPages, s.cfg.Crawl.MaxPagesDefault)
	if maxPages <= 0 {
		return crawler.JobParameters{}, errors.New("max_pages must be > 0")
	}
	if maxPages > s.cfg.Crawl.MaxPagesLimit {
		return crawler.JobParameters{}, fmt.Errorf("max_pages must be <= %d", s.cfg.Crawl.MaxPagesLimit)
	}
	rateLimitMs := valueOrDefault(req.RateLimitMs, s.cfg.Crawl.RateLimitMs)
	if rateLimitMs < 0 {
		return crawler.JobParameters{}, errors.New("rate_limit_ms must be >= 0")
	}
	profile := req.Profile
	if profile == "" {
		profile = s.cfg.Crawl.DefaultProfile
	}
	if _, err := crawler.LookupProfile(profile); err != nil {
		return crawler.JobParameters{}, err
	}
	return crawler.JobParameters{
		SeedURL:     req.SeedURL,
		MaxPages:    maxPages,
		Profile:     profile,
		RateLimitMs: rateLimitMs,
	}, nil
}

func valueOrDefault[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
