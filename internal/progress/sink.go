package progress

import "context"

// Sink consumes batches of events fanned out by the Hub. Implementations
// must tolerate duplicate delivery and out-of-order batches across jobs.
type Sink interface {
	Consume(ctx context.Context, events []Event) error
	Close(ctx context.Context) error
}
