// Command transcode builds every rendition of one source video and prints
// the aggregate result as JSON.
//
// Usage:
//
//	transcode [flags] <source>
//
// Flags:
//
//	-presets file     YAML pipeline presets (default: $PIPELINES_FILE)
//	-pipelines a,b    Preset names to build, in order (default: all presets)
//	-out dir          Output directory (default: $OUTPUT_DIR)
//	-public path      Public URL prefix of outputs (default: $PUBLIC_PATH)
//	-workers n        Concurrent transcodes (default: $TRANSCODE_WORKERS or CPU count)
//
// Progress is drawn on stderr when it is a terminal. Every other setting,
// such as FFMPEG_PATH or PROBE_DB_PATH, is read from the environment and
// any .env file in the working directory.
//
// Exit codes: 0 on success, 1 when a rendition fails, 2 on usage errors.
package main
