package mqtt

import (
	"errors"
	"fmt"
	"time"
)

// Telemetry is one message published by a weather station.
type Telemetry struct {
	StationID   string    `json:"station_id"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature_c,omitempty"`
	Humidity    *float64  `json:"humidity_pct,omitempty"`
	Pressure    *float64  `json:"pressure_hpa,omitempty"`
	Battery     *float64  `json:"battery_v,omitempty"`
	Sequence    *int      `json:"sequence,omitempty"`
}

var (
	errNoStationID = errors.New("station_id is required")
	errNoTimestamp = errors.New("timestamp is required")
	errNoReading   = errors.New("at least one sensor reading (temperature, humidity, or pressure) is required")
)

// Validate checks the fields every station message must carry and the
// ranges of the optional readings. Temperature bounds are left to the
// converter, which reports them with its own error kinds.
func (t Telemetry) Validate() error {
	if t.StationID == "" {
		return errNoStationID
	}
	if t.Timestamp.IsZero() {
		return errNoTimestamp
	}
	if t.Humidity != nil && (*t.Humidity < 0 || *t.Humidity > 100) {
		return fmt.Errorf("humidity_pct out of range: %f (must be 0-100)", *t.Humidity)
	}
	if t.Pressure != nil && *t.Pressure <= 0 {
		return fmt.Errorf("pressure_hpa must be positive: %f", *t.Pressure)
	}
	if t.Temperature == nil && t.Humidity == nil && t.Pressure == nil {
		return errNoReading
	}
	return nil
}
