// Package queue de-duplicates rendition requests and groups them by
// source file before dispatch.
//
// Requests for the same source accumulate in one group until the drain
// loop picks the group up. The group is removed from the pending index
// before any of its jobs start, so later requests for that source open
// a new group. A request is answered with the existing Job when the same
// (source, output) pair is already pending or running, and with an
// immediately settled Job carrying a predicted result when the output
// file already exists.
//
// The source is probed once per group; the probe cache is keyed by
// content digest so identical content under another path is not probed
// again.
package queue
