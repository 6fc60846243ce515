package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_tagger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_db_queries_total",
			Help: "Total number of store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_tagger_db_query_duration_seconds",
			Help:    "Store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_tagger_db_size_bytes",
			Help: "Size of store files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Catalog metrics
var (
	CatalogVideosTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_catalog_videos",
			Help: "Number of video records in the catalog",
		},
	)

	CatalogTagsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_tagger_catalog_tags",
			Help: "Number of distinct tags with a positive count",
		},
	)

	TagMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_tag_mutations_total",
			Help: "Tag mutations by operation and status",
		},
		[]string{"operation", "status"}, // append, replace, remove
	)

	TagIndexMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_tag_index_mutations_total",
			Help: "Tag index count changes by kind",
		},
		[]string{"kind"}, // increment, decrement, evict
	)

	PruneRemovedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_prune_removed_total",
			Help: "Catalog records removed because their file vanished",
		},
	)
)

// Aggregation metrics
var (
	AggregateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_tagger_aggregate_duration_seconds",
			Help:    "Time spent aggregating one directory tree",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	AggregateEntriesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_aggregate_entries_scanned_total",
			Help: "Directory entries visited by aggregation",
		},
	)

	AggregateSkippedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_tagger_aggregate_skipped_entries_total",
			Help: "Entries skipped during aggregation because they could not be read",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_tagger_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_filesystem_operation_errors_total",
			Help: "Filesystem operations that returned an error",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_filesystem_retry_attempts_total",
			Help: "Retries issued after a stale file handle",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_filesystem_retry_success_total",
			Help: "Operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_tagger_filesystem_stale_errors_total",
			Help: "ESTALE errors seen",
		},
		[]string{"operation", "volume"},
	)
)

// AppInfo exposes build information as labels.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "video_tagger_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
