package influxdb

import "errors"

// Sentinel errors for the telemetry store.
//
// Check with errors.Is():
//
//	if errors.Is(err, influxdb.ErrNotConnected) {
//	    // Meter telemetry is dropped until the store comes back.
//	}
var (
	// ErrNotConnected indicates the client has no InfluxDB connection.
	// Telemetry writes are silently dropped in this state.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial health check against the
	// InfluxDB instance failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates a telemetry write failed. Batched writes
	// surface their failures through the error callback instead.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled indicates telemetry is switched off in the configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
