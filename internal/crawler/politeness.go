package crawler

import (
	"context"
	"sync"
	"time"
)

// DelayScheduler is the baseline politeness strategy: a fixed pause between
// successive fetches. The first call returns immediately; every later call
// blocks until the configured delay has elapsed since the previous fetch.
// It honors context cancellation while pausing.
type DelayScheduler struct {
	mu    sync.Mutex
	delay time.Duration
	last  time.Time
}

// NewDelayScheduler builds a scheduler with the given inter-request delay.
func NewDelayScheduler(delay time.Duration) *DelayScheduler {
	return &DelayScheduler{delay: delay}
}

// ChainScheduler waits on every member in order, so a per-crawl delay can
// be layered under a shared per-origin rate budget.
type ChainScheduler []Scheduler

// Wait blocks until every member scheduler admits the fetch.
func (c ChainScheduler) Wait(ctx context.Context, url string) error {
	for _, s := range c {
		if s == nil {
			continue
		}
		if err := s.Wait(ctx, url); err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until the politeness delay since the previous fetch has
// passed, or the context ends.
func (s *DelayScheduler) Wait(ctx context.Context, _ string) error {
	s.mu.Lock()
	var remaining time.Duration
	if !s.last.IsZero() && s.delay > 0 {
		remaining = s.delay - time.Since(s.last)
	}
	s.mu.Unlock()

	if remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	s.last = time.Now()
	s.mu.Unlock()
	return nil
}
