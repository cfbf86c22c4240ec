package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/api"
	"github.com/paulosgsf/typingmind-webscraper/internal/clock/system"
	"github.com/paulosgsf/typingmind-webscraper/internal/config"
	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
	"github.com/paulosgsf/typingmind-webscraper/internal/dispatcher"
	"github.com/paulosgsf/typingmind-webscraper/internal/extract"
	collyfetcher "github.com/paulosgsf/typingmind-webscraper/internal/fetcher/colly"
	"github.com/paulosgsf/typingmind-webscraper/internal/id/uuid"
	"github.com/paulosgsf/typingmind-webscraper/internal/metrics"
	"github.com/paulosgsf/typingmind-webscraper/internal/policy/ratelimit"
	"github.com/paulosgsf/typingmind-webscraper/internal/progress"
	"github.com/paulosgsf/typingmind-webscraper/internal/progress/sinks"
	queuememory "github.com/paulosgsf/typingmind-webscraper/internal/queue/memory"
	"github.com/paulosgsf/typingmind-webscraper/internal/sitemap"
	storememory "github.com/paulosgsf/typingmind-webscraper/internal/store/memory"
	"github.com/paulosgsf/typingmind-webscraper/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the scraping service with its HTTP API",
		Long: `Starts the HTTP API, the job queue, and the crawl worker pool. Jobs are
submitted via POST /v1/crawls and polled via the status and result
endpoints.`,
		RunE: runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()
	ctx := cmd.Context()

	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		sinks.NewLog(logger.Named("progress")),
		sinks.NewPrometheus(),
	)

	jobStore := storememory.NewJobStore()
	queue := queuememory.NewQueue(cfg.Crawl.QueueDepth)
	clock := system.New()
	idGen := uuid.New()

	orchestrator := buildOrchestrator(cfg, hub, logger, sharedSchedulers(cfg))

	workers := make([]*worker.Worker, 0, cfg.Crawl.Workers)
	for i := 0; i < cfg.Crawl.Workers; i++ {
		workers = append(workers, worker.New(
			queue,
			jobStore,
			orchestrator,
			logger.Named("worker").With(zap.Int("index", i)),
		))
	}
	dispatch := dispatcher.New(queue, workers, logger.Named("dispatcher"))

	apiServer := api.NewServer(jobStore, dispatch, idGen, clock, logger.Named("api"), cfg)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		dispatch.Run(ctx)
	}()
	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("closing job queue", zap.Int("pending", queue.Len()))
	queue.Close()
	if err := hub.Close(shutdownCtx); err != nil {
		logger.Error("progress hub close error", zap.Error(err))
	}
	return nil
}

// sharedSchedulers layers the per-crawl politeness delay under a shared
// per-origin rate budget, so concurrent workers hitting the same site stay
// within one request per rate_limit_ms overall.
func sharedSchedulers(cfg config.Config) crawler.SchedulerFactory {
	rps := 0.0
	if cfg.Crawl.RateLimitMs > 0 {
		rps = 1000.0 / float64(cfg.Crawl.RateLimitMs)
	}
	limiter := ratelimit.New(ratelimit.Config{DefaultRPS: rps, DefaultBurst: 1})
	return func(delay time.Duration) crawler.Scheduler {
		return crawler.ChainScheduler{crawler.NewDelayScheduler(delay), limiter}
	}
}

func buildOrchestrator(
	cfg config.Config,
	hub *progress.Hub,
	logger *zap.Logger,
	schedulers crawler.SchedulerFactory,
) *crawler.Orchestrator {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.HTTP.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		MaxRedirects: cfg.HTTP.MaxRedirects,
	})
	resolver := sitemap.NewResolver(fetcher, logger.Named("sitemap"), cfg.FetchTimeout())
	extractor := extract.New(logger.Named("extract"))
	return crawler.NewOrchestrator(
		resolver,
		fetcher,
		extractor,
		schedulers,
		system.New(),
		hub,
		logger.Named("crawler"),
		crawler.OrchestratorConfig{
			FetchTimeout:    cfg.FetchTimeout(),
			MaxRedirects:    cfg.HTTP.MaxRedirects,
			MaxPagesDefault: cfg.Crawl.MaxPagesDefault,
			MinContentChars: cfg.Crawl.MinContentChars,
		},
	)
}
