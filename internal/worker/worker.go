// Package worker implements the crawl job execution loop.
package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
	"github.com/paulosgsf/typingmind-webscraper/internal/store/memory"
)

// Worker consumes queue items and runs the crawl pipeline for each.
type Worker struct {
	queue        crawler.Queue
	jobStore     *memory.JobStore
	orchestrator *crawler.Orchestrator
	logger       *zap.Logger
}

// New constructs a Worker.
func New(
	queue crawler.Queue,
	jobStore *memory.JobStore,
	orchestrator *crawler.Orchestrator,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		queue:        queue,
		jobStore:     jobStore,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Run blocks, consuming queue items until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			return
		}
		w.process(ctx, item)
	}
}

// process runs one crawl job under a job-scoped cancellable context. The
// cancel function is registered in the store so the API can abandon the
// crawl mid-run.
func (w *Worker) process(ctx context.Context, item crawler.QueueItem) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	w.jobStore.RegisterCancel(item.JobID, cancel)

	if err := w.jobStore.UpdateJobStatus(ctx, item.JobID, crawler.JobStatusRunning, "", crawler.JobCounters{}); err != nil {
		if errors.Is(err, memory.ErrJobFinished) {
			// Canceled while still queued; the stale queue item is dropped.
			w.logger.Info("skipping finished job", zap.String("job_id", item.JobID))
			return
		}
		w.logger.Error("job status update failed",
			zap.String("job_id", item.JobID), zap.Error(err))
		return
	}

	report, runErr := w.orchestrator.Run(jobCtx, item.JobID, item.Params)
	counters := countPages(report.Pages)

	// A partial report is still worth serving, canceled or not.
	if len(report.Pages) > 0 || runErr == nil {
		if err := w.jobStore.SaveReport(ctx, item.JobID, report); err != nil {
			w.logger.Error("report save failed",
				zap.String("job_id", item.JobID), zap.Error(err))
		}
	}

	status, errText := finalStatus(runErr)
	if err := w.jobStore.UpdateJobStatus(ctx, item.JobID, status, errText, counters); err != nil {
		w.logger.Error("job status update failed",
			zap.String("job_id", item.JobID), zap.Error(err))
	}
}

func countPages(pages []crawler.PageResult) crawler.JobCounters {
	var counters crawler.JobCounters
	for _, p := range pages {
		if p.Success {
			counters.PagesSucceeded++
		} else {
			counters.PagesFailed++
		}
	}
	return counters
}

func finalStatus(runErr error) (crawler.JobStatus, string) {
	switch {
	case runErr == nil:
		return crawler.JobStatusSucceeded, ""
	case errors.Is(runErr, context.Canceled):
		return crawler.JobStatusCanceled, "crawl canceled"
	default:
		return crawler.JobStatusFailed, runErr.Error()
	}
}
