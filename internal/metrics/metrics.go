// Package metrics exposes Prometheus collectors for the scraping service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeRunsTotal            *prometheus.CounterVec
	scrapeItemsTotal           *prometheus.CounterVec
	scrapeCandidatesTotal      *prometheus.CounterVec
	scrapeRunDurationSeconds   *prometheus.HistogramVec
	translateChunksTotal       *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapeRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agridata_scrape_runs_total",
				Help: "Total number of scrape runs, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		scrapeItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agridata_scrape_items_total",
				Help: "Total number of records produced by scrape runs, labeled by source.",
			},
			[]string{"source"},
		)

		scrapeCandidatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agridata_scrape_candidates_total",
				Help: "Candidate links/rows seen per source, labeled by disposition.",
			},
			[]string{"source", "disposition"},
		)

		scrapeRunDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agridata_scrape_run_duration_seconds",
				Help:    "Histogram of scrape run durations, labeled by source.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"source"},
		)

		translateChunksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agridata_translate_chunks_total",
				Help: "Translation chunks attempted, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScrapeRun records the outcome and duration of one scrape run.
func ObserveScrapeRun(source, outcome string, items int, duration time.Duration) {
	scrapeRunsTotal.WithLabelValues(source, outcome).Inc()
	if items > 0 {
		scrapeItemsTotal.WithLabelValues(source).Add(float64(items))
	}
	scrapeRunDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveCandidate counts a candidate disposition (kept, skipped, failed).
func ObserveCandidate(source, disposition string) {
	scrapeCandidatesTotal.WithLabelValues(source, disposition).Inc()
}

// ObserveTranslateChunk counts one chunk attempt (translated, failed).
func ObserveTranslateChunk(outcome string) {
	translateChunksTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
