package sinks

import (
	"context"

	"github.com/paulosgsf/typingmind-webscraper/internal/metrics"
	"github.com/paulosgsf/typingmind-webscraper/internal/progress"
)

// Prometheus translates progress events into the service's Prometheus
// collectors. It requires metrics.Init to have run.
type Prometheus struct{}

// NewPrometheus builds a Prometheus sink.
func NewPrometheus() *Prometheus {
	metrics.Init()
	return &Prometheus{}
}

// Consume records fetch latency, page outcomes, and crawl completions.
func (s *Prometheus) Consume(_ context.Context, events []progress.Event) error {
	for _, evt := range events {
		switch evt.Stage {
		case progress.StageFetchDone:
			metrics.ObserveFetchDuration(evt.Site, evt.Dur)
		case progress.StagePageDone:
			outcome := "success"
			if evt.Note != "" {
				outcome = evt.Note
			}
			metrics.ObservePage(evt.Site, outcome, int(evt.Bytes))
		case progress.StageCrawlDone:
			metrics.ObserveCrawl("succeeded")
		case progress.StageCrawlError:
			metrics.ObserveCrawl("failed")
		}
	}
	return nil
}

// Close implements progress.Sink.
func (s *Prometheus) Close(_ context.Context) error {
	return nil
}
