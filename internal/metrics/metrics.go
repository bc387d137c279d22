package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_renditions_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_renditions_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Queue metrics
var (
	QueueJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_queue_jobs_total",
			Help: "Total number of rendition requests seen by the queue, by outcome",
		},
		[]string{"outcome"}, // "enqueued", "deduplicated", "existing"
	)

	QueuePendingGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_queue_pending_groups",
			Help: "Number of source files with renditions waiting to be dispatched",
		},
	)

	QueuePendingJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_queue_pending_jobs",
			Help: "Number of renditions waiting to be dispatched",
		},
	)

	QueueActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_queue_active_jobs",
			Help: "Number of renditions dispatched and not yet settled",
		},
	)
)

// Transcode metrics
var (
	TranscodeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_transcode_jobs_total",
			Help: "Total number of rendition transcodes by status",
		},
		[]string{"status"}, // "success", "error"
	)

	TranscodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_renditions_transcode_duration_seconds",
			Help:    "Rendition transcode duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"pipeline"},
	)

	TranscodesInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_transcodes_in_progress",
			Help: "Number of ffmpeg processes currently running",
		},
	)

	TranscodeFramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_renditions_transcode_frames_total",
			Help: "Total number of frame ticks reported by workers",
		},
	)
)

// Probe metrics
var (
	ProbeLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_probe_lookups_total",
			Help: "Total number of probe cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	ProbeCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_probe_cache_entries",
			Help: "Number of content digests held in the probe cache",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retries after a stale NFS handle",
		},
		[]string{"operation"}, // "stat", "open"
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_renditions_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors seen",
		},
		[]string{"operation"},
	)
)

// Worker pool metrics
var (
	WorkerPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_worker_pool_size",
			Help: "Maximum number of concurrent transcode workers",
		},
	)

	WorkerPoolBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_renditions_worker_pool_busy",
			Help: "Number of workers currently running a task",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_renditions_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
