// Package database manages the SQLite connection used by the playback
// history store.
//
// It configures WAL mode and busy timeout via connection string pragmas,
// restricts database file permissions, and verifies connectivity at open.
// Schema creation belongs to the history package; this package only hands
// out a ready connection.
package database
