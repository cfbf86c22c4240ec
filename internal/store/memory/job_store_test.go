package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
)

func newJob(id string) crawler.Job {
	return crawler.Job{
		ID:        id,
		Status:    crawler.JobStatusQueued,
		Submitted: time.Now().UTC(),
		Parameters: crawler.JobParameters{
			SeedURL:  "https://example.com/docs/",
			MaxPages: 5,
			Profile:  "documentation",
		},
	}
}

func TestJobStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))
	require.Error(t, s.CreateJob(ctx, newJob("j1")), "duplicate create must fail")

	job, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, crawler.JobStatusQueued, job.Status)

	_, err = s.GetJob(ctx, "missing")
	require.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobStoreStatusTransitionsSetTimestamps(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))

	require.NoError(t, s.UpdateJobStatus(ctx, "j1", crawler.JobStatusRunning, "", crawler.JobCounters{}))
	job, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.NotNil(t, job.Started)
	require.Nil(t, job.Finished)

	counters := crawler.JobCounters{PagesSucceeded: 3, PagesFailed: 1}
	require.NoError(t, s.UpdateJobStatus(ctx, "j1", crawler.JobStatusSucceeded, "", counters))
	job, err = s.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.NotNil(t, job.Finished)
	require.Equal(t, counters, job.Counters)

	require.ErrorIs(t,
		s.UpdateJobStatus(ctx, "missing", crawler.JobStatusRunning, "", crawler.JobCounters{}),
		ErrJobNotFound)
}

func TestJobStoreTerminalStatusIsFinal(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))
	require.NoError(t, s.UpdateJobStatus(ctx, "j1", crawler.JobStatusCanceled, "canceled via API", crawler.JobCounters{}))

	// A worker draining the stale queue item must not revive the job.
	require.ErrorIs(t,
		s.UpdateJobStatus(ctx, "j1", crawler.JobStatusRunning, "", crawler.JobCounters{}),
		ErrJobFinished)
	require.ErrorIs(t,
		s.UpdateJobStatus(ctx, "j1", crawler.JobStatusSucceeded, "", crawler.JobCounters{PagesSucceeded: 1}),
		ErrJobFinished)

	job, err := s.GetJob(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, crawler.JobStatusCanceled, job.Status)
	require.Equal(t, "canceled via API", job.ErrorText)
}

func TestJobStoreRegisterCancelRefusedAfterFinish(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))
	require.NoError(t, s.UpdateJobStatus(ctx, "j1", crawler.JobStatusCanceled, "", crawler.JobCounters{}))

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.RegisterCancel("j1", cancel)
	require.False(t, s.Cancel("j1"), "finished jobs must not accept cancel hooks")
}

func TestJobStoreReports(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))

	_, err := s.GetReport(ctx, "j1")
	require.ErrorIs(t, err, ErrJobNotFound)

	report := crawler.Report{
		Summary:          crawler.Summary{BaseURL: "https://example.com/docs/", TotalScraped: 2},
		ConsolidatedText: "some text",
	}
	require.NoError(t, s.SaveReport(ctx, "j1", report))
	got, err := s.GetReport(ctx, "j1")
	require.NoError(t, err)
	require.Equal(t, report, got)

	require.ErrorIs(t, s.SaveReport(ctx, "missing", report), ErrJobNotFound)
}

func TestJobStoreCancelRegistry(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))

	jobCtx, cancel := context.WithCancel(context.Background())
	s.RegisterCancel("j1", cancel)

	require.True(t, s.Cancel("j1"))
	require.ErrorIs(t, jobCtx.Err(), context.Canceled)

	// Second cancel finds no registered function.
	require.False(t, s.Cancel("j1"))
	require.False(t, s.Cancel("unknown"))
}

func TestJobStoreTerminalStatusDropsCancel(t *testing.T) {
	t.Parallel()

	s := NewJobStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJob(ctx, newJob("j1")))

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.RegisterCancel("j1", cancel)

	require.NoError(t, s.UpdateJobStatus(ctx, "j1", crawler.JobStatusFailed, "boom", crawler.JobCounters{}))
	require.False(t, s.Cancel("j1"), "terminal jobs must not retain cancel hooks")
}
