package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
	queuememory "github.com/paulosgsf/typingmind-webscraper/internal/queue/memory"
)

func TestDispatcherEnqueueProxiesToQueue(t *testing.T) {
	t.Parallel()

	queue := queuememory.NewQueue(1)
	d := New(queue, nil, nil)

	item := crawler.QueueItem{JobID: "j1"}
	require.NoError(t, d.Enqueue(context.Background(), item))

	got, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "j1", got.JobID)
}

func TestDispatcherEnqueueWrapsQueueError(t *testing.T) {
	t.Parallel()

	queue := queuememory.NewQueue(1)
	d := New(queue, nil, nil)
	require.NoError(t, d.Enqueue(context.Background(), crawler.QueueItem{JobID: "fill"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Enqueue(ctx, crawler.QueueItem{JobID: "blocked"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "queue enqueue")
}

func TestDispatcherRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	d := New(queuememory.NewQueue(1), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancellation")
	}
}
