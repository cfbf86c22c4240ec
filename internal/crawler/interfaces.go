package crawler

import (
	"context"
	"time"
)

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Resolver discovers candidate page URLs for a seed origin. An empty result
// is a normal outcome, not an error.
type Resolver interface {
	Discover(ctx context.Context, seedURL string) []string
}

// Extractor turns one fetched page into structured text plus metadata.
// Extraction is total: it never fails, it degrades to empty output.
type Extractor interface {
	Extract(pageURL string, body []byte) PageResult
}

// Scheduler enforces the politeness contract between successive fetches.
// Implementations may be a fixed inter-request delay or a shared per-origin
// rate budget; swapping them must not change orchestrator code.
type Scheduler interface {
	Wait(ctx context.Context, url string) error
}

// JobStore persists job metadata and crawl reports.
type JobStore interface {
	CreateJob(ctx context.Context, job Job) error
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errText string, counters JobCounters) error
	SaveReport(ctx context.Context, jobID string, report Report) error
	GetJob(ctx context.Context, jobID string) (Job, error)
	GetReport(ctx context.Context, jobID string) (Report, error)
}

// Queue provides enqueue/dequeue semantics for crawl jobs.
type Queue interface {
	Enqueue(ctx context.Context, job QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
