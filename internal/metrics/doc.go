// Package metrics provides Prometheus instrumentation for the rendition
// service.
//
// All metrics are prefixed with "video_renditions_" and registered with
// the default registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
//   - DBQueryTotal: Counter of probe store queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//
// ## Queue Metrics
//
//   - QueueJobsTotal: Counter of requests by outcome (enqueued/deduplicated/existing)
//   - QueuePendingGroups: Gauge of source files waiting for dispatch
//   - QueuePendingJobs: Gauge of renditions waiting for dispatch
//   - QueueActiveJobs: Gauge of dispatched renditions not yet settled
//
// ## Transcode Metrics
//
//   - TranscodeJobsTotal: Counter by status
//   - TranscodeDuration: Histogram of transcode time by pipeline name
//   - TranscodesInProgress: Gauge of running ffmpeg processes
//   - TranscodeFramesTotal: Counter of frame ticks
//
// ## Probe Metrics
//
//   - ProbeLookupsTotal: Counter of cache lookups by result (hit/miss/error)
//   - ProbeCacheEntries: Gauge of cached content digests
//
// ## Worker Pool Metrics
//
//   - WorkerPoolSize: Gauge of the concurrency bound
//   - WorkerPoolBusy: Gauge of workers running a task
//
// # Collector
//
// [Collector] periodically reads queue statistics from a [StatsProvider]
// and updates the queue and probe gauges:
//
//	collector := metrics.NewCollector(manager, 15*time.Second)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Probe cache hit rate:
//
//	rate(video_renditions_probe_lookups_total{result="hit"}[5m]) /
//	sum(rate(video_renditions_probe_lookups_total[5m]))
//
// P95 transcode time per pipeline:
//
//	histogram_quantile(0.95, sum(rate(video_renditions_transcode_duration_seconds_bucket[5m])) by (le, pipeline))
package metrics
