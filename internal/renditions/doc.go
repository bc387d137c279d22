// Package renditions is the entry point for transcoding one source into
// several renditions and joining their results.
//
// A Service owns everything that lives for one session: the probe cache,
// the pending-group index, the worker pool and the drain loop. Close
// ends the session.
package renditions
