// Command transcode-worker runs a single rendition in its own process.
//
// It reads one JSON payload from stdin, runs ffmpeg and writes a stream of
// newline delimited JSON messages to stdout: frame ticks while encoding,
// then either the rendition result or an error. Logs go to stderr.
//
// The server starts it once per job when WORKER_BINARY is set, so a crash
// in ffmpeg handling cannot take the server down.
//
// Environment:
//
//	FFMPEG_PATH    ffmpeg binary (default: ffmpeg)
//	DEBUG_FFMPEG   log full ffmpeg argument lists
//	LOG_LEVEL      debug, info, warn or error
package main
