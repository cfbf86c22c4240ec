package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/progress"
)

// SchedulerFactory builds the politeness scheduler for one crawl given the
// job's requested inter-request delay. A shared rate-budget implementation
// may ignore the delay and return a process-wide limiter instead.
type SchedulerFactory func(delay time.Duration) Scheduler

// OrchestratorConfig tunes pipeline behavior.
type OrchestratorConfig struct {
	FetchTimeout    time.Duration
	MaxRedirects    int
	MaxPagesDefault int
	// MinContentChars is the floor below which a successful page is
	// excluded from the consolidated document (default 50).
	MinContentChars int
	// ClassifyCap bounds how many classified URLs feed the ranker,
	// expressed as a multiple of maxPages (default 5).
	ClassifyCap int
}

// Orchestrator drives the end-to-end crawl: discovery, classification,
// ranking, then the sequential fetch+extract loop under the politeness
// scheduler. One page's failure never aborts the batch; only pre-loop
// errors (bad seed, unknown profile) are fatal.
type Orchestrator struct {
	resolver   Resolver
	fetcher    Fetcher
	extractor  Extractor
	schedulers SchedulerFactory
	clock      Clock
	hub        *progress.Hub
	logger     *zap.Logger
	cfg        OrchestratorConfig
}

// NewOrchestrator constructs an Orchestrator. A nil scheduler factory
// falls back to the fixed-delay baseline; a nil hub disables progress
// reporting.
func NewOrchestrator(
	resolver Resolver,
	fetcher Fetcher,
	extractor Extractor,
	schedulers SchedulerFactory,
	clock Clock,
	hub *progress.Hub,
	logger *zap.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	if schedulers == nil {
		schedulers = func(delay time.Duration) Scheduler {
			return NewDelayScheduler(delay)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinContentChars <= 0 {
		cfg.MinContentChars = 50
	}
	if cfg.ClassifyCap <= 0 {
		cfg.ClassifyCap = 5
	}
	if cfg.MaxPagesDefault <= 0 {
		cfg.MaxPagesDefault = 10
	}
	return &Orchestrator{
		resolver:   resolver,
		fetcher:    fetcher,
		extractor:  extractor,
		schedulers: schedulers,
		clock:      clock,
		hub:        hub,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run executes one crawl. The returned error is non-nil only for pre-loop
// failures or cancellation; per-page failures are recorded in the report.
// On cancellation the partial report accumulated so far is returned
// alongside the context error.
func (o *Orchestrator) Run(ctx context.Context, jobID string, params JobParameters) (Report, error) {
	started := o.clock.Now()

	seed, err := validateSeed(params.SeedURL)
	if err != nil {
		o.emitError(jobID, params.SeedURL, err)
		return Report{}, err
	}
	profile, err := LookupProfile(params.Profile)
	if err != nil {
		o.emitError(jobID, seed, err)
		return Report{}, err
	}
	maxPages := params.MaxPages
	if maxPages <= 0 {
		maxPages = o.cfg.MaxPagesDefault
	}

	o.emit(progress.Event{JobID: jobID, TS: started, Stage: progress.StageCrawlStart, URL: seed})
	o.logger.Info("crawl starting",
		zap.String("job_id", jobID),
		zap.String("seed", seed),
		zap.String("profile", profile.Name),
		zap.Int("max_pages", maxPages),
	)

	discovered := o.resolver.Discover(ctx, seed)
	if len(discovered) == 0 {
		// No sitemap anywhere is a normal outcome: the seed itself
		// becomes the sole candidate.
		discovered = []string{seed}
	}
	o.emit(progress.Event{
		JobID: jobID, TS: o.clock.Now(), Stage: progress.StageDiscovery,
		URL: seed, Bytes: int64(len(discovered)),
	})

	cleaned := CleanURLs(discovered)
	filtered := Classify(cleaned, profile, maxPages*o.cfg.ClassifyCap)
	if len(filtered) == 0 {
		// The pipeline never terminates with zero candidates.
		filtered = []string{seed}
	}
	ranked := Rank(filtered, profile, maxPages)

	o.logger.Debug("pipeline selection complete",
		zap.String("job_id", jobID),
		zap.Int("discovered", len(discovered)),
		zap.Int("filtered", len(filtered)),
		zap.Int("ranked", len(ranked)),
	)

	scheduler := o.schedulers(params.RateLimit())
	pages := make([]PageResult, 0, len(ranked))
	for _, pageURL := range ranked {
		if ctx.Err() != nil {
			o.emitError(jobID, seed, ctx.Err())
			return o.buildReport(seed, len(discovered), len(filtered), pages), ctx.Err()
		}
		if err := scheduler.Wait(ctx, pageURL); err != nil {
			o.emitError(jobID, seed, err)
			return o.buildReport(seed, len(discovered), len(filtered), pages), err
		}
		result := o.scrapePage(ctx, jobID, pageURL)
		pages = append(pages, result)
	}

	report := o.buildReport(seed, len(discovered), len(filtered), pages)
	o.emit(progress.Event{
		JobID: jobID, TS: o.clock.Now(), Stage: progress.StageCrawlDone,
		URL: seed, Dur: o.clock.Now().Sub(started),
	})
	o.logger.Info("crawl finished",
		zap.String("job_id", jobID),
		zap.Int("scraped", report.Summary.TotalScraped),
		zap.Int("successful", report.Summary.TotalSuccessful),
		zap.Int("content_size", report.Summary.TotalContentSize),
	)
	return report, nil
}

// scrapePage runs Fetching → Extracting for one URL. Failures are folded
// into the result, never returned.
func (o *Orchestrator) scrapePage(ctx context.Context, jobID, pageURL string) PageResult {
	site := hostOf(pageURL)
	o.emit(progress.Event{JobID: jobID, TS: o.clock.Now(), Stage: progress.StageFetchStart, Site: site, URL: pageURL})

	resp, err := o.fetcher.Fetch(ctx, FetchRequest{
		URL:          pageURL,
		Timeout:      o.cfg.FetchTimeout,
		MaxRedirects: o.cfg.MaxRedirects,
	})
	if err != nil {
		o.logger.Warn("page fetch failed",
			zap.String("job_id", jobID), zap.String("url", pageURL), zap.Error(err))
		o.emit(progress.Event{
			JobID: jobID, TS: o.clock.Now(), Stage: progress.StageFetchDone,
			Site: site, URL: pageURL, StatusClass: progress.StatusOther, Dur: 0,
		})
		result := PageResult{
			URL:       pageURL,
			Success:   false,
			ErrorKind: ErrorKindFetch,
			Timestamp: o.clock.Now(),
		}
		o.emit(progress.Event{
			JobID: jobID, TS: o.clock.Now(), Stage: progress.StagePageDone,
			Site: site, URL: pageURL, Note: string(ErrorKindFetch),
		})
		return result
	}

	o.emit(progress.Event{
		JobID: jobID, TS: o.clock.Now(), Stage: progress.StageFetchDone,
		Site: site, URL: pageURL,
		StatusClass: progress.ClassifyStatus(resp.StatusCode), Dur: resp.Duration,
	})

	result := o.extractor.Extract(pageURL, resp.Body)
	result.URL = pageURL
	result.Success = true
	result.Timestamp = o.clock.Now()

	o.emit(progress.Event{
		JobID: jobID, TS: o.clock.Now(), Stage: progress.StagePageDone,
		Site: site, URL: pageURL, Bytes: int64(result.Length),
	})
	return result
}

func (o *Orchestrator) buildReport(seed string, discovered, filtered int, pages []PageResult) Report {
	successful := 0
	for _, p := range pages {
		if p.Success {
			successful++
		}
	}
	consolidated := Consolidate(pages, o.cfg.MinContentChars)
	return Report{
		Summary: Summary{
			BaseURL:          seed,
			TotalDiscovered:  discovered,
			TotalFiltered:    filtered,
			TotalScraped:     len(pages),
			TotalSuccessful:  successful,
			TotalContentSize: len(consolidated),
			Timestamp:        o.clock.Now(),
		},
		Pages:            pages,
		ConsolidatedText: consolidated,
	}
}

func (o *Orchestrator) emit(evt progress.Event) {
	o.hub.Emit(evt)
}

func (o *Orchestrator) emitError(jobID, seed string, err error) {
	o.emit(progress.Event{
		JobID: jobID, TS: o.clock.Now(), Stage: progress.StageCrawlError,
		URL: seed, Note: err.Error(),
	})
}

func validateSeed(rawURL string) (string, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid seed url %q: %w", rawURL, err)
	}
	if !isAbsoluteHTTP(normalized) {
		return "", fmt.Errorf("seed url %q is not an absolute http(s) address", rawURL)
	}
	return normalized, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
