package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteMeterLevel writes a single meter reading to InfluxDB.
//
// This is the primary method for recording level telemetry streamed by the
// console. The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - group: Catalog group name (e.g., "VirtualMicInputs")
//   - endpoint: Catalog endpoint name (e.g., "enMeter")
//   - address: Full console address including any instance index
//   - level: The meter level, normalised 0.0-1.0
//
// Example:
//
//	client.WriteMeterLevel("VirtualMicInputs", "enMeter", "/enPPCMeterMessage/VirtualMicInputs/enMeter/2", 0.62)
func (c *Client) WriteMeterLevel(group, endpoint, address string, level float64) {
	c.WritePoint(
		"meter",
		map[string]string{
			"group":    group,
			"endpoint": endpoint,
			"address":  address,
		},
		map[string]interface{}{
			"level": level,
		},
	)
}

// WriteSessionStats writes console session counters.
//
// Used for tracking traffic volume over time.
//
// Parameters:
//   - host: Console host the session is connected to
//   - messagesTx: Total messages sent since session start
//   - messagesRx: Total messages received since session start
func (c *Client) WriteSessionStats(host string, messagesTx, messagesRx uint64) {
	c.WritePoint(
		"session",
		map[string]string{
			"host": host,
		},
		map[string]interface{}{
			"messages_tx": int64(messagesTx),
			"messages_rx": int64(messagesRx),
		},
	)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "mixcore-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
