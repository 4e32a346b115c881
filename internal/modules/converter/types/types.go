package types

import (
	"time"

	"thermogauge/internal/temperature"
)

// Source names where a conversion request came from.
type Source string

const (
	SourceWeb  Source = "web"
	SourceAPI  Source = "api"
	SourceMQTT Source = "mqtt"
	SourceCLI  Source = "cli"
)

// Request is a raw Celsius text plus how to round it. A nil Decimals means
// "as many decimals as the input has".
type Request struct {
	Input     string
	Decimals  *int
	Source    Source
	StationID string
}

// Result is a successful conversion ready for rendering.
type Result struct {
	ID       int64               `json:"id,omitempty"`
	Input    string              `json:"input"`
	Decimals int                 `json:"decimals"`
	Reading  temperature.Reading `json:"reading"`
	Band     temperature.Band    `json:"band"`
	Color    string              `json:"color"`
	Gauges   []temperature.Gauge `json:"gauges"`
}

// Conversion is one row of the conversion log.
type Conversion struct {
	ID        int64               `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Source    Source              `json:"source"`
	StationID string              `json:"stationId,omitempty"`
	Input     string              `json:"input"`
	Decimals  int                 `json:"decimals"`
	Reading   temperature.Reading `json:"reading"`
}
