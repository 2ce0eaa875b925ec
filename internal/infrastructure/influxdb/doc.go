// Package influxdb writes playback telemetry to InfluxDB v2.
//
// Telemetry is optional (disabled by default). When enabled, players record
// volume, position and duration values plus playback state transitions as
// non-blocking batched points. Write failures surface through the optional
// error callback and never affect the adapter's state handling.
package influxdb
