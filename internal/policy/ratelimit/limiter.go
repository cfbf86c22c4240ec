// Package ratelimit implements a shared per-origin token bucket. It is the
// politeness scheduler to use once fetching goes parallel: the rate budget
// is held per origin, not per worker, so concurrent crawls of the same site
// still honor the contract.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/paulosgsf/typingmind-webscraper/internal/metrics"
)

// Config holds rate limiter configuration.
type Config struct {
	DefaultRPS   float64
	DefaultBurst int
}

// Limiter manages per-origin token buckets and implements crawler.Scheduler.
type Limiter struct {
	mu           sync.Mutex
	limiters     map[string]*rate.Limiter
	defaultRate  rate.Limit
	defaultBurst int
}

// New creates a Limiter. A non-positive RPS means unlimited.
func New(cfg Config) *Limiter {
	r := rate.Limit(cfg.DefaultRPS)
	if cfg.DefaultRPS <= 0 {
		r = rate.Inf
	}
	burst := cfg.DefaultBurst
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  r,
		defaultBurst: burst,
	}
}

// Wait blocks until a token is available for the URL's origin, respecting
// the context. Delays over a millisecond are recorded as politeness delay.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	origin := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		origin = u.Hostname()
	}

	l.mu.Lock()
	limiter, ok := l.limiters[origin]
	if !ok {
		limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
		l.limiters[origin] = limiter
	}
	l.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if delay := time.Since(start); delay > time.Millisecond {
		metrics.ObservePolitenessDelay(origin, delay)
	}
	return nil
}
