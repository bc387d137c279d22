// Command probestore inspects and maintains the persistent probe store.
//
// The server caches ffprobe results by source content digest in a sqlite
// database. This utility reports on that cache and removes entries whose
// stored geometry is wrong, for example after a source was re-encoded
// outside the server.
//
// Usage:
//
//	probestore <command> [digest]
//
// Commands:
//
//	status          Show the schema version and number of stored probes.
//	show <digest>   Print the stored probe for digest as JSON.
//	forget <digest> Remove the stored probe for digest. Asks for
//	                confirmation when stdin is a terminal.
//
// Environment:
//
//	PROBE_DB_PATH - Path to the probe database (default: /database/probes.db)
package main
