package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion/reconciliation pipeline.

var (
	// Fetcher (component A)
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_fetch_requests_total",
			Help: "Total number of adapter fetch requests",
		},
		[]string{"adapter", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccerpipe_fetch_duration_seconds",
			Help:    "Duration of adapter fetch requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"adapter"},
	)

	FetchBackoffSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccerpipe_fetch_backoff_seconds",
			Help: "Current reactive backoff delay per adapter",
		},
		[]string{"adapter"},
	)

	// Database
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccerpipe_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "soccerpipe_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "soccerpipe_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Alias cache
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccerpipe_cache_hits_total",
			Help: "Total number of alias cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccerpipe_cache_misses_total",
			Help: "Total number of alias cache misses",
		},
	)

	// Scraper Engine (component C)
	ScraperEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_scraper_events_total",
			Help: "Total number of events scraped",
		},
		[]string{"adapter", "status"},
	)

	ScraperCheckpointWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_scraper_checkpoint_writes_total",
			Help: "Total number of checkpoint file writes",
		},
		[]string{"adapter"},
	)

	ScraperMatchesStagedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_scraper_matches_staged_total",
			Help: "Total number of matches written to staging",
		},
		[]string{"adapter"},
	)

	// Team-Identity Resolver (component E)
	ResolverHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_resolver_hits_total",
			Help: "Total number of team identity resolutions by strategy",
		},
		[]string{"strategy"},
	)

	// Promotion Pipeline (component G)
	PromotionBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_promotion_batches_total",
			Help: "Total number of promotion batches processed",
		},
		[]string{"status"},
	)

	PromotionRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_promotion_rows_total",
			Help: "Total number of staging rows processed by promotion",
		},
		[]string{"outcome"},
	)

	PromotionBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "soccerpipe_promotion_batch_duration_seconds",
			Help:    "Duration of a single promotion batch",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Event-Linkage Inferrer (component H)
	LinkageInferredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_linkage_inferred_total",
			Help: "Total number of matches linked to an event by inference",
		},
		[]string{"basis"},
	)

	// Rebuild/Swap (component I)
	RebuildCoverageRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "soccerpipe_rebuild_coverage_ratio",
			Help: "Coverage ratio of the last rebuild validation by dimension",
		},
		[]string{"dimension"},
	)

	SwapOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_swap_operations_total",
			Help: "Total number of swap operations by outcome",
		},
		[]string{"outcome"},
	)

	// Write-Protection Gate (component J)
	WriteGateDenialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soccerpipe_write_gate_denials_total",
			Help: "Total number of writes rejected by the write-protection gate",
		},
	)

	// Scheduler / orchestrator (component K)
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soccerpipe_job_duration_seconds",
			Help:    "Duration of scheduled job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"job"},
	)

	// Errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soccerpipe_errors_total",
			Help: "Total number of errors by component and kind",
		},
		[]string{"component", "error_kind"},
	)
)

// RecordFetch records an adapter fetch metric.
func RecordFetch(adapter, status string, duration float64) {
	FetchRequestsTotal.WithLabelValues(adapter, status).Inc()
	FetchDuration.WithLabelValues(adapter).Observe(duration)
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records an alias cache hit.
func RecordCacheHit() { CacheHitsTotal.Inc() }

// RecordCacheMiss records an alias cache miss.
func RecordCacheMiss() { CacheMissesTotal.Inc() }

// RecordResolverHit records which identity resolver strategy produced a hit.
func RecordResolverHit(strategy string) {
	ResolverHitsTotal.WithLabelValues(strategy).Inc()
}

// RecordError records an error.
func RecordError(component, errorKind string) {
	ErrorsTotal.WithLabelValues(component, errorKind).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
