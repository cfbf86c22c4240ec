// Package metrics exposes Prometheus collectors for the scraper service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperPagesTotal          *prometheus.CounterVec
	scraperBytesTotal          *prometheus.CounterVec
	scraperCrawlsTotal         *prometheus.CounterVec
	scraperFetchSeconds        *prometheus.HistogramVec
	scraperPolitenessSeconds   *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of pages scraped, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		scraperBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_bytes_total",
				Help: "Total number of extracted characters, labeled by site.",
			},
			[]string{"site"},
		)

		scraperCrawlsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_crawls_total",
				Help: "Total number of crawl jobs processed, labeled by status.",
			},
			[]string{"status"},
		)

		scraperFetchSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"site"},
		)

		scraperPolitenessSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_politeness_delay_seconds",
				Help:    "Histogram of politeness waits between fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"origin"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of API requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of API request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname label from a URL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler exposing the Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records one page outcome plus the extracted content size.
func ObservePage(site string, outcome string, contentSize int) {
	label := SanitizeSite(site)
	scraperPagesTotal.WithLabelValues(label, outcome).Inc()
	if contentSize > 0 {
		scraperBytesTotal.WithLabelValues(label).Add(float64(contentSize))
	}
}

// ObserveFetchDuration records a page fetch latency.
func ObserveFetchDuration(site string, duration time.Duration) {
	scraperFetchSeconds.WithLabelValues(SanitizeSite(site)).Observe(duration.Seconds())
}

// ObserveCrawl increments the crawl counter for the given terminal status.
func ObserveCrawl(status string) {
	scraperCrawlsTotal.WithLabelValues(status).Inc()
}

// ObservePolitenessDelay records the duration of a politeness wait.
func ObservePolitenessDelay(origin string, duration time.Duration) {
	scraperPolitenessSeconds.WithLabelValues(SanitizeSite(origin)).Observe(duration.Seconds())
}

// ObserveHTTPRequest records an API request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
