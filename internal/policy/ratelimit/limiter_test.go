package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paulosgsf/typingmind-webscraper/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

func TestLimiterUnlimitedWhenRPSNotSet(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(context.Background(), "https://example.com/page"))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterEnforcesPerOriginRate(t *testing.T) {
	t.Parallel()

	// 20 rps, burst 1: three requests need at least ~100ms.
	l := New(Config{DefaultRPS: 20, DefaultBurst: 1})
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background(), "https://example.com/page"))
	}
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterOriginsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 5, DefaultBurst: 1})
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "https://one.example/page"))
	require.NoError(t, l.Wait(context.Background(), "https://two.example/page"))
	require.NoError(t, l.Wait(context.Background(), "https://three.example/page"))
	// Each origin has its own bucket, so no cross-origin waiting.
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestLimiterHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	l := New(Config{DefaultRPS: 0.1, DefaultBurst: 1})
	require.NoError(t, l.Wait(context.Background(), "https://example.com/a"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, "https://example.com/b")
	require.Error(t, err)
}
