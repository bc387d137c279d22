// Package database provides SQLite storage for probe results.
//
// Source geometry is keyed by content digest so that a file probed in one
// session is not probed again in the next. The database uses WAL mode for
// concurrent reads and initializes its schema automatically.
package database
