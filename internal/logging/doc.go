// Package logging provides a simple leveled logging interface for the
// rendition service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=true.
//
// Components that need a logger value rather than the package functions
// (for example a rebuilt ffmpeg command) use a Sink, which prefixes every
// line with the component's name and honours the same level.
package logging
