// Package filesystem wraps the file operations renditions depend on with
// retries for NFS stale file handles (ESTALE).
//
// Source videos and rendition outputs commonly live on network mounts.
// A stale handle there is transient: [StatWithRetry] and [OpenWithRetry]
// retry it with capped exponential backoff and report every attempt to the
// metrics package. Any other error is returned at once.
//
// [Exists] is the output-existence check used before queueing a rendition,
// and [ContentDigest] computes the source digest that rendition file names
// embed.
package filesystem
