// Package crawler defines the core types and pipeline stages for turning a
// seed URL into ranked, deduplicated, extracted page content.
package crawler

import (
	"net/http"
	"time"
)

// JobStatus represents the lifecycle state of a crawl job.
type JobStatus string

// Job status values kept in the job store.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// ErrorKind classifies per-page and pipeline failures.
type ErrorKind string

// Failure taxonomy. Discovery and fetch failures never abort a crawl;
// only pre-loop errors (bad seed, unknown profile) are fatal.
const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindFetch     ErrorKind = "fetch_failure"
	ErrorKindParse     ErrorKind = "parse_failure"
	ErrorKindDiscovery ErrorKind = "discovery_failure"
)

// JobParameters captures the per-crawl knobs requested by the client.
type JobParameters struct {
	SeedURL     string `json:"seed_url"`
	MaxPages    int    `json:"max_pages"`
	Profile     string `json:"profile"`
	RateLimitMs int    `json:"rate_limit_ms"`
}

// RateLimit returns the politeness delay between successive fetches.
func (p JobParameters) RateLimit() time.Duration {
	return time.Duration(p.RateLimitMs) * time.Millisecond
}

// Job represents the metadata kept for each submitted crawl request.
type Job struct {
	ID         string        `json:"id"`
	Status     JobStatus     `json:"status"`
	Submitted  time.Time     `json:"submitted_at"`
	Started    *time.Time    `json:"started_at,omitempty"`
	Finished   *time.Time    `json:"finished_at,omitempty"`
	ErrorText  string        `json:"error_text,omitempty"`
	Parameters JobParameters `json:"parameters"`
	Counters   JobCounters   `json:"counters"`
}

// JobCounters tracks success/failure stats per job.
type JobCounters struct {
	PagesSucceeded int `json:"pages_succeeded"`
	PagesFailed    int `json:"pages_failed"`
}

// PageMetadata carries the resolved per-page metadata fields. Every field
// degrades to its zero value (or "unknown") when no source yields a
// candidate; extraction never raises over missing metadata.
type PageMetadata struct {
	Author       string   `json:"author,omitempty"`
	Keywords     []string `json:"keywords"`
	PublishDate  string   `json:"publish_date,omitempty"`
	Language     string   `json:"language"`
	WordCount    int      `json:"word_count"`
	ReadingTime  int      `json:"reading_time"`
	ContentType  string   `json:"content_type"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
}

// PageResult is the outcome of fetching and extracting one URL.
// Success=false implies BodyText is empty and Length is zero; Success=true
// does not guarantee Length > 0 (extraction may degrade gracefully).
type PageResult struct {
	URL           string       `json:"url"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	BodyText      string       `json:"body_text"`
	Length        int          `json:"length"`
	Success       bool         `json:"success"`
	ErrorKind     ErrorKind    `json:"error_kind,omitempty"`
	RenderFlagged bool         `json:"render_flagged,omitempty"`
	Metadata      PageMetadata `json:"metadata"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Summary tallies one crawl invocation. It is derived entirely from the
// page results and never independently mutated.
type Summary struct {
	BaseURL          string    `json:"base_url"`
	TotalDiscovered  int       `json:"total_discovered"`
	TotalFiltered    int       `json:"total_filtered"`
	TotalScraped     int       `json:"total_scraped"`
	TotalSuccessful  int       `json:"total_successful"`
	TotalContentSize int       `json:"total_content_size"`
	Timestamp        time.Time `json:"timestamp"`
}

// Report is the full result of one crawl: summary, per-page outcomes, and
// the consolidated document built from pages above the content floor.
type Report struct {
	Summary          Summary      `json:"summary"`
	Pages            []PageResult `json:"pages"`
	ConsolidatedText string       `json:"consolidated_text"`
}

// JobResult is returned by the API result endpoint.
type JobResult struct {
	Job    Job    `json:"job"`
	Report Report `json:"report"`
}

// ScoredURL pairs a URL with its deterministic priority score. Score is a
// pure function of (URL, OriginalIndex, profile); no hidden state.
type ScoredURL struct {
	URL           string
	Score         int
	OriginalIndex int
}

// FetchRequest captures everything needed to fetch one URL.
type FetchRequest struct {
	URL          string
	Headers      http.Header
	Timeout      time.Duration
	MaxRedirects int
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string
	Params    JobParameters
	Submitted int64
}
