package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePlayerMetric writes a single numeric player measurement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - player: Player name (e.g., "kitchen")
//   - measurement: The metric name (e.g., "volume_level", "position_seconds")
//   - value: The numeric value to record
//
// Example:
//
//	client.WritePlayerMetric("kitchen", "volume_level", 0.35)
//	client.WritePlayerMetric("kitchen", "position_seconds", 12.5)
func (c *Client) WritePlayerMetric(player string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"player_metrics",
		map[string]string{
			"player":      player,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteStateTransition records a playback state change.
//
// Parameters:
//   - player: Player name
//   - state: New playback state (playing, paused, idle, on, off)
func (c *Client) WriteStateTransition(player string, state string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"player_state",
		map[string]string{
			"player": player,
		},
		map[string]interface{}{
			"state": state,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
