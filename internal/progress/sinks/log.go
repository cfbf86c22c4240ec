// Package sinks provides progress.Sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/progress"
)

// Log writes progress events to a structured logger at debug level, with
// crawl lifecycle milestones promoted to info.
type Log struct {
	logger *zap.Logger
}

// NewLog builds a Log sink.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger}
}

// Consume logs each event in the batch.
func (s *Log) Consume(_ context.Context, events []progress.Event) error {
	for _, evt := range events {
		fields := []zap.Field{
			zap.String("job_id", evt.JobID),
			zap.String("stage", string(evt.Stage)),
		}
		if evt.URL != "" {
			fields = append(fields, zap.String("url", evt.URL))
		}
		if evt.StatusClass != "" {
			fields = append(fields, zap.String("status_class", string(evt.StatusClass)))
		}
		if evt.Bytes > 0 {
			fields = append(fields, zap.Int64("bytes", evt.Bytes))
		}
		if evt.Dur > 0 {
			fields = append(fields, zap.Duration("duration", evt.Dur))
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		switch evt.Stage {
		case progress.StageCrawlStart, progress.StageCrawlDone, progress.StageCrawlError:
			s.logger.Info("crawl progress", fields...)
		default:
			s.logger.Debug("crawl progress", fields...)
		}
	}
	return nil
}

// Close implements progress.Sink; loggers need no teardown.
func (s *Log) Close(_ context.Context) error {
	return nil
}
