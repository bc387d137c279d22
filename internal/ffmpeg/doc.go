// Package ffmpeg models a configured ffmpeg invocation and runs it.
//
// A Command is built fluently: inputs with their options, global options,
// complex filter graph entries and one or more outputs. Each output carries
// its own audio/video option lists, filter chains, size filters and generic
// options. Arguments composes these positionally into the argument list
// passed to the ffmpeg binary, so the order in which lists are filled is
// significant.
//
// Executors run an argument list and report a typed event stream: zero or
// more progress events followed by exactly one terminal event (end or
// error).
package ffmpeg
