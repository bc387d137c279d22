// Command video-renditions serves the rendition HTTP API.
//
// A client posts a source video path and a list of pipelines to
// /api/transcode. The server probes the source once, queues one job per
// pipeline (joining identical jobs already queued or running), runs them
// on a bounded worker pool and answers with every rendition's size and
// public URL. Finished renditions are served from OUTPUT_DIR under
// PUBLIC_PATH.
//
// # Lifecycle
//
//  1. .env files are merged into the environment
//  2. Configuration is read and OUTPUT_DIR is created
//  3. Pipeline presets are loaded from PIPELINES_FILE, if set
//  4. The rendition service starts: probe cache (optionally backed by
//     sqlite), worker pool and queue drain loop
//  5. The metrics collector starts, if enabled
//  6. The HTTP server starts
//
// On SIGINT or SIGTERM readiness checks start failing, the HTTP server
// drains in-flight requests for up to 30 seconds, and the rendition
// service stops: queued jobs fail and running transcodes finish.
//
// See [video-renditions/internal/startup] for the environment variables.
package main
