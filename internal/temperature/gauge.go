package temperature

import "fmt"

type gaugeRange struct {
	min, max float64
}

// Display ranges: -50 °C to 150 °C in each scale.
var gaugeRanges = map[Scale]gaugeRange{
	ScaleCelsius:    {min: -50, max: 150},
	ScaleFahrenheit: {min: -58, max: 302},
	ScaleKelvin:     {min: 223.15, max: 423.15},
}

// FillPercentage maps v onto the display range of scale s and clamps the
// result to [0, 100]. Unknown scales yield 0.
func FillPercentage(v float64, s Scale) float64 {
	r, ok := gaugeRanges[s]
	if !ok {
		return 0
	}
	pct := (v - r.min) / (r.max - r.min) * 100
	return max(0, min(100, pct))
}

// Band is a colour band for the thermometer liquid.
type Band int

const (
	BandCold Band = iota
	BandCool
	BandModerate
	BandWarm
	BandHot
)

var bandInfo = [...]struct {
	name  string
	color string
}{
	BandCold:     {"cold", "#3b82f6"},
	BandCool:     {"cool", "#06b6d4"},
	BandModerate: {"moderate", "#10b981"},
	BandWarm:     {"warm", "#f59e0b"},
	BandHot:      {"hot", "#ef4444"},
}

// upper bounds (exclusive) for every band but the last
var bandEdges = []struct {
	below Celsius
	band  Band
}{
	{0, BandCold},
	{15, BandCool},
	{25, BandModerate},
	{35, BandWarm},
}

// ColorFor returns the colour band for a Celsius value.
func ColorFor(c Celsius) Band {
	for _, e := range bandEdges {
		if c < e.below {
			return e.band
		}
	}
	return BandHot
}

func (b Band) String() string {
	if b < BandCold || b > BandHot {
		return ""
	}
	return bandInfo[b].name
}

// Color is the CSS colour of the band.
func (b Band) Color() string {
	if b < BandCold || b > BandHot {
		return ""
	}
	return bandInfo[b].color
}

func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Band) UnmarshalText(text []byte) error {
	for i, info := range bandInfo {
		if info.name == string(text) {
			*b = Band(i)
			return nil
		}
	}
	return fmt.Errorf("unknown colour band %q", text)
}

// Gauge is everything needed to draw one thermometer.
type Gauge struct {
	Scale Scale   `json:"scale"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Fill  float64 `json:"fill"`
	Band  Band    `json:"band"`
	Color string  `json:"color"`
}

// Gauges builds the three thermometers for r. All of them share the colour of
// the Celsius band.
func Gauges(r Reading) []Gauge {
	band := ColorFor(r.Celsius)
	out := make([]Gauge, 0, len(Scales))
	for _, s := range Scales {
		v := r.Value(s)
		out = append(out, Gauge{
			Scale: s,
			Value: v,
			Unit:  s.Unit(),
			Fill:  FillPercentage(v, s),
			Band:  band,
			Color: band.Color(),
		})
	}
	return out
}
