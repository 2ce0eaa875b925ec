package influxdb

import "errors"

// Domain-specific errors for InfluxDB operations.
var (
	// ErrDisabled is returned when telemetry is disabled in configuration.
	ErrDisabled = errors.New("influxdb: telemetry disabled in configuration")

	// ErrConnectionFailed is returned when the connection attempt fails.
	ErrConnectionFailed = errors.New("influxdb: connection failed")
)
