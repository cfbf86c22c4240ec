// Package memory keeps jobs and crawl reports in process memory. Crawl
// state is scoped to the process lifetime; nothing persists between runs.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
)

// ErrJobNotFound is returned when a job or report lookup misses.
var ErrJobNotFound = errors.New("job not found")

// ErrJobFinished is returned when a status update targets a job that has
// already reached a terminal status. Terminal statuses never change; in
// particular a job canceled while still queued must not be revived by the
// worker that later drains its queue item.
var ErrJobFinished = errors.New("job already finished")

// JobStore implements crawler.JobStore plus a cancel-function registry so
// the API layer can abandon a running crawl.
type JobStore struct {
	mu      sync.RWMutex
	jobs    map[string]crawler.Job
	reports map[string]crawler.Report
	cancels map[string]context.CancelFunc
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:    make(map[string]crawler.Job),
		reports: make(map[string]crawler.Report),
		cancels: make(map[string]context.CancelFunc),
	}
}

// CreateJob stores a new job in queued status.
func (s *JobStore) CreateJob(_ context.Context, job crawler.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return errors.New("job already exists")
	}
	s.jobs[job.ID] = job
	return nil
}

// UpdateJobStatus updates the status, error text, and counters for a job.
func (s *JobStore) UpdateJobStatus(
	_ context.Context,
	jobID string,
	status crawler.JobStatus,
	errText string,
	counters crawler.JobCounters,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	if isTerminal(job.Status) {
		return ErrJobFinished
	}
	job.Status = status
	job.ErrorText = errText
	job.Counters = counters
	now := time.Now().UTC()
	if status == crawler.JobStatusRunning && job.Started == nil {
		job.Started = pointerTime(now)
	}
	if isTerminal(status) {
		job.Finished = pointerTime(now)
		delete(s.cancels, jobID)
	}
	s.jobs[jobID] = job
	return nil
}

// SaveReport stores the crawl report for a job.
func (s *JobStore) SaveReport(_ context.Context, jobID string, report crawler.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return ErrJobNotFound
	}
	s.reports[jobID] = report
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (crawler.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return crawler.Job{}, ErrJobNotFound
	}
	return job, nil
}

// GetReport fetches the crawl report for a job.
func (s *JobStore) GetReport(_ context.Context, jobID string) (crawler.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[jobID]
	if !ok {
		return crawler.Report{}, ErrJobNotFound
	}
	return report, nil
}

// RegisterCancel records the cancel function for a running job. The entry
// is dropped automatically once the job reaches a terminal status, and
// registration is refused for jobs already finished.
func (s *JobStore) RegisterCancel(jobID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[jobID]; ok && isTerminal(job.Status) {
		return
	}
	s.cancels[jobID] = cancel
}

// Cancel invokes the registered cancel function for a job. Returns false
// when the job is unknown or already finished.
func (s *JobStore) Cancel(jobID string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[jobID]
	delete(s.cancels, jobID)
	s.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

func pointerTime(t time.Time) *time.Time {
	ts := t
	return &ts
}

func isTerminal(status crawler.JobStatus) bool {
	switch status {
	case crawler.JobStatusSucceeded, crawler.JobStatusFailed, crawler.JobStatusCanceled:
		return true
	default:
		return false
	}
}
