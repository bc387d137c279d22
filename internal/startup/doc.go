// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read from environment variables via [LoadConfig], after
// [LoadEnvFiles] has merged any .env file into the environment:
//
//   - OUTPUT_DIR: Where renditions are written (default: ./public/static)
//   - PUBLIC_PATH: URL prefix of rendition Src values (default: /static)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_ENABLED: Serve Prometheus metrics on /metrics (default: true)
//   - TRANSCODE_WORKERS: Concurrent transcodes, 0 for one per CPU (default: 0)
//   - FFMPEG_PATH, FFPROBE_PATH: External binaries (default: ffmpeg, ffprobe)
//   - WORKER_BINARY: Run each transcode in this isolated worker binary
//   - PROBE_DB_PATH: SQLite file persisting probe results across sessions
//   - PIPELINES_FILE: YAML pipeline presets
//   - DEBUG_FFMPEG: Log the ffmpeg arguments of every job (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogDatabaseInit]: Probe store timing
//   - [LogTranscoderInit]: Worker pool size and binary availability
//   - [LogPresetsLoaded]: Pipeline presets
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownComplete]: Graceful shutdown
package startup
