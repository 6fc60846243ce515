// Package metrics provides Prometheus instrumentation for video-tagger.
//
// All metrics are prefixed with "video_tagger_" and registered with the
// default registry through promauto. Mount promhttp.Handler() to expose them:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Metric Categories
//
//   - HTTP: request totals, durations and in-flight gauge
//   - Store: query totals and durations per operation, store file sizes
//   - Catalog: video and tag totals, tag mutations, prune removals
//   - Aggregation: per-tree duration, entries scanned, skipped entries
//   - Filesystem: operation latency and ESTALE retry accounting per volume
//
// # Collector
//
// [Collector] polls a [StatsProvider] on an interval and updates the catalog
// gauges and the store file size gauge:
//
//	collector := metrics.NewCollector(store, dbPath, time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Most used tags are not exported as labels (unbounded cardinality). Tag
// mutation error rate:
//
//	sum(rate(video_tagger_tag_mutations_total{status="error"}[5m]))
//	  / sum(rate(video_tagger_tag_mutations_total[5m]))
//
// P95 listing latency:
//
//	histogram_quantile(0.95, sum(rate(video_tagger_http_request_duration_seconds_bucket{path="/api/files"}[5m])) by (le))
package metrics
