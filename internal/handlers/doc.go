// Package handlers provides the HTTP API of the rendition server.
//
// It includes handlers for:
//   - Transcoding a source into renditions (POST /api/transcode)
//   - Listing pipeline presets
//   - Health, liveness and readiness checks
//   - Version and Prometheus metrics
package handlers
