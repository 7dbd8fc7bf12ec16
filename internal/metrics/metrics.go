// Package metrics exposes Prometheus collectors for the discovery service.
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

// Fetch outcomes recorded per adapter call.
const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeFallback = "static_fallback"
)

var (
	sourceFetchTotal           *prometheus.CounterVec
	sourceRecordsTotal         *prometheus.CounterVec
	sourceFetchDuration        *prometheus.HistogramVec
	upsertsTotal               *prometheus.CounterVec
	passesTotal                *prometheus.CounterVec
	passDurationSeconds        prometheus.Histogram
	fallbackResolutionsTotal   *prometheus.CounterVec
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	cacheLookupsTotal          *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_source_fetch_total",
				Help: "Total number of adapter fetches, labeled by source and outcome.",
			},
			[]string{"source", "outcome"},
		)

		sourceRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_source_records_total",
				Help: "Total number of normalized records returned, labeled by source.",
			},
			[]string{"source"},
		)

		sourceFetchDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "discovery_source_fetch_duration_seconds",
				Help:    "Histogram of adapter fetch latencies, labeled by source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"source"},
		)

		upsertsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_upserts_total",
				Help: "Total number of upserted records, labeled by result.",
			},
			[]string{"result"},
		)

		passesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_passes_total",
				Help: "Total number of aggregation passes, labeled by status.",
			},
			[]string{"status"},
		)

		passDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "discovery_pass_duration_seconds",
				Help:    "Histogram of full aggregation pass durations.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		)

		fallbackResolutionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_fallback_resolutions_total",
				Help: "Total number of job searches resolved, labeled by the winning source.",
			},
			[]string{"source"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "discovery_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_search_cache_lookups_total",
				Help: "Total number of job search cache lookups, labeled by result.",
			},
			[]string{"result"},
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

// SanitizeHost extracts a lowercase hostname from a URL.
// It returns "unknown" if the URL is invalid.
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveFetch records one adapter call.
func ObserveFetch(source, outcome string, records int, duration time.Duration) {
	Init()
	sourceFetchTotal.WithLabelValues(source, outcome).Inc()
	sourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if records > 0 {
		sourceRecordsTotal.WithLabelValues(source).Add(float64(records))
	}
}

// ObserveUpserts adds the per-pass upsert counts.
func ObserveUpserts(inserted, updated, failed int) {
	Init()
	upsertsTotal.WithLabelValues("inserted").Add(float64(inserted))
	upsertsTotal.WithLabelValues("updated").Add(float64(updated))
	upsertsTotal.WithLabelValues("failed").Add(float64(failed))
}

// ObservePass records a finished aggregation pass.
func ObservePass(status string, duration time.Duration) {
	Init()
	passesTotal.WithLabelValues(status).Inc()
	passDurationSeconds.Observe(duration.Seconds())
}

// ObserveFallbackResolution counts which provider answered a job search.
func ObserveFallbackResolution(source string) {
	Init()
	fallbackResolutionsTotal.WithLabelValues(source).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(host string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(host).Observe(duration.Seconds())
}

// ObserveCacheLookup counts a search cache hit, miss or error.
func ObserveCacheLookup(result string) {
	Init()
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
