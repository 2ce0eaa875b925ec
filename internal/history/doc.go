// Package history persists an append-only audit log of playback
// transitions (state and track changes) to SQLite.
//
// The log exists for inspection, not recovery: on restart the adapter
// rebuilds all live player state from freshly arriving MQTT messages and
// never reads this table.
package history
