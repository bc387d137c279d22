// Package probe reads the stream geometry of source videos with ffprobe
// and caches it by content digest, so identical content under different
// paths is probed once per session. An optional Store persists results
// across sessions.
package probe
