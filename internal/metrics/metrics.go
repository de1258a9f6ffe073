// Swathline - Seismic Survey Coverage Tracking and Gap Analysis
// Copyright 2026 Swathline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swathline/swathline

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Import Metrics
	ImportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_rows_total",
			Help: "Total number of import rows by outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "applied", "rejected"
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "import_duration_seconds",
			Help:    "Duration of import operations in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"}, // "deployments", "acquisition", "survey_plan", "swath_definitions"
	)

	ImportBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "import_batch_size",
			Help:    "Number of rows in import batches",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
		},
		[]string{"kind"},
	)

	// Deployment Ledger Metrics
	LedgerWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_writes_total",
			Help: "Total number of deployment ledger writes",
		},
		[]string{"channel", "op"}, // op: "set", "clear", "clear_line"
	)

	// Change Stream Metrics
	ChangesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "changes_published_total",
			Help: "Total number of deployment changes published to the stream",
		},
	)

	ChangePublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "change_publish_errors_total",
			Help: "Total number of failed deployment change publishes",
		},
	)

	ChangesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "changes_consumed_total",
			Help: "Total number of deployment changes consumed from the stream",
		},
	)

	ChangeParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "change_parse_failures_total",
			Help: "Total number of stream messages that failed to parse",
		},
	)

	StatsRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_refreshes_total",
			Help: "Total number of coverage statistic re-warms",
		},
	)

	StatsRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_refresh_duration_seconds",
			Help:    "Duration of coverage statistic re-warms in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RefreshBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stats_refresh_backlog",
			Help: "Number of line/channel pairs waiting to be re-warmed",
		},
	)

	// Cache Metrics (mirrored from the in-process cache)
	CacheHits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_hits",
			Help: "Cumulative cache hits as reported by the results cache",
		},
	)

	CacheMisses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_misses",
			Help: "Cumulative cache misses as reported by the results cache",
		},
	)

	CacheEvictions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_evictions",
			Help: "Cumulative cache evictions as reported by the results cache",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
	)

	// Database Metrics
	DBConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connections_in_use",
			Help: "Current number of database connections in use",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "duckdb_connections_idle",
			Help: "Current number of idle database connections",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordImport records the outcome of one import operation.
func RecordImport(kind string, applied, rejected int, duration time.Duration) {
	ImportRows.WithLabelValues(kind, "applied").Add(float64(applied))
	ImportRows.WithLabelValues(kind, "rejected").Add(float64(rejected))
	ImportBatchSize.WithLabelValues(kind).Observe(float64(applied + rejected))
	ImportDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordLedgerWrite records one deployment ledger write.
func RecordLedgerWrite(channel, op string) {
	LedgerWrites.WithLabelValues(channel, op).Inc()
}

// RecordChangePublished records the outcome of one change publish.
func RecordChangePublished(err error) {
	if err != nil {
		ChangePublishErrors.Inc()
		return
	}
	ChangesPublished.Inc()
}

// RecordChangeConsumed records one change message taken off the stream.
func RecordChangeConsumed() {
	ChangesConsumed.Inc()
}

// RecordChangeParseFailure records a stream message that could not be
// decoded.
func RecordChangeParseFailure() {
	ChangeParseFailures.Inc()
}

// RecordStatsRefresh records one statistics re-warm pass.
func RecordStatsRefresh(duration time.Duration) {
	StatsRefreshes.Inc()
	StatsRefreshDuration.Observe(duration.Seconds())
}

// UpdateRefreshBacklog sets the number of pending re-warm targets.
func UpdateRefreshBacklog(n int) {
	RefreshBacklog.Set(float64(n))
}

// UpdateCacheGauges mirrors a cache statistics snapshot into the exported
// gauges.
func UpdateCacheGauges(hits, misses, evictions, entries int64) {
	CacheHits.Set(float64(hits))
	CacheMisses.Set(float64(misses))
	CacheEvictions.Set(float64(evictions))
	CacheEntries.Set(float64(entries))
}

// UpdateDBPoolGauges mirrors the connection pool state into the exported
// gauges.
func UpdateDBPoolGauges(inUse, idle int) {
	DBConnectionsInUse.Set(float64(inUse))
	DBConnectionsIdle.Set(float64(idle))
}

// SetAppInfo publishes the running version. Called once at startup.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime sets the uptime gauge from the process start instant.
func UpdateUptime(start time.Time) {
	AppUptime.Set(time.Since(start).Seconds())
}
