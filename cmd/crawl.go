package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
	"github.com/paulosgsf/typingmind-webscraper/internal/metrics"
	"github.com/paulosgsf/typingmind-webscraper/internal/progress"
	"github.com/paulosgsf/typingmind-webscraper/internal/progress/sinks"
)

type crawlFlags struct {
	url         string
	maxPages    int
	profile     string
	rateLimitMs int
	jsonOutput  bool
}

func newCrawlCmd() *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Runs one crawl synchronously and prints the result",
		Long: `Crawls a site from its seed URL: discovers pages via the sitemap, ranks
them under the chosen profile, extracts text from the top pages, and prints
the consolidated document (or the full JSON report with --json).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawlCommand(cmd.Context(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.url, "url", "", "seed URL (required)")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "maximum pages to scrape (0 uses the configured default)")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "content profile: documentation, article, or general")
	cmd.Flags().IntVar(&flags.rateLimitMs, "rate-limit-ms", -1, "delay between fetches in milliseconds (-1 uses the configured default)")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "print the full report as JSON instead of the consolidated text")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func runCrawlCommand(ctx context.Context, flags *crawlFlags) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()
	hub := progress.NewHub(
		progress.Config{Logger: logger.Named("progress")},
		sinks.NewLog(logger.Named("progress")),
	)
	defer hub.Close(context.Background()) //nolint:errcheck // shutdown path

	params := crawler.JobParameters{
		SeedURL:     flags.url,
		MaxPages:    flags.maxPages,
		Profile:     flags.profile,
		RateLimitMs: flags.rateLimitMs,
	}
	if params.MaxPages <= 0 {
		params.MaxPages = cfg.Crawl.MaxPagesDefault
	}
	if params.Profile == "" {
		params.Profile = cfg.Crawl.DefaultProfile
	}
	if params.RateLimitMs < 0 {
		params.RateLimitMs = cfg.Crawl.RateLimitMs
	}

	orchestrator := buildOrchestrator(cfg, hub, logger, nil)
	report, err := orchestrator.Run(ctx, "cli", params)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("crawl: %w", err)
	}

	if flags.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		return nil
	}
	fmt.Println(report.ConsolidatedText)
	fmt.Fprintf(os.Stderr, "\nscraped %d/%d pages, %d characters\n",
		report.Summary.TotalSuccessful, report.Summary.TotalScraped, report.Summary.TotalContentSize)
	return nil
}
