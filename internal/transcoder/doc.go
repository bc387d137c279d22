// Package transcoder runs rendition jobs.
//
// A job crosses a boundary as a JSON Payload carrying the serialized
// pipeline descriptor and the probed source geometry. On the far side a
// Worker rebuilds the ffmpeg command, sizes it with the geometry
// resolver, runs it through an ffmpeg.Executor and turns percent-complete
// events into frame ticks.
//
// Two transports implement the boundary. LocalTransport runs the Worker
// in-process but still encodes and decodes the payload. ExecTransport
// spawns a transcode-worker process and speaks newline-delimited JSON
// with it.
//
// The Dispatcher feeds jobs to a workers.Pool, so at most Size ffmpeg
// processes run at once, and settles each job on its own.
package transcoder
