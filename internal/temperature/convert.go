package temperature

import (
	"math"
	"strconv"
	"strings"
)

// DefaultDecimals is the precision used when the caller has no preference.
const DefaultDecimals = 2

// Reading is one conversion result: the same temperature in three scales,
// rounded to a shared precision.
type Reading struct {
	Celsius    Celsius    `json:"celsius"`
	Fahrenheit Fahrenheit `json:"fahrenheit"`
	Kelvin     Kelvin     `json:"kelvin"`
}

// Convert computes the Fahrenheit and Kelvin equivalents of c and rounds all
// three values to decimals fractional digits. decimals is clamped to
// [0, MaxDecimals].
func Convert(c Celsius, decimals int) Reading {
	decimals = ClampDecimals(decimals)
	return Reading{
		Celsius:    Celsius(Round(float64(c), decimals)),
		Fahrenheit: Fahrenheit(Round(float64(C2F(c)), decimals)),
		Kelvin:     Kelvin(Round(float64(C2K(c)), decimals)),
	}
}

// Value returns the reading's value on scale s, or 0 for an unknown scale.
func (r Reading) Value(s Scale) float64 {
	switch s {
	case ScaleCelsius:
		return float64(r.Celsius)
	case ScaleFahrenheit:
		return float64(r.Fahrenheit)
	case ScaleKelvin:
		return float64(r.Kelvin)
	default:
		return 0
	}
}

// ClampDecimals limits d to [0, MaxDecimals].
func ClampDecimals(d int) int {
	return max(0, min(MaxDecimals, d))
}

// Round rounds v to decimals fractional digits, half away from zero. The
// rounding is done on the shortest decimal representation of v, so values
// such as 2.675 round as written rather than as stored. Negative zero comes
// back as 0.
func Round(v float64, decimals int) float64 {
	if v == 0 {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	decimals = ClampDecimals(decimals)

	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) <= decimals {
		return v
	}

	digits := []byte(whole + frac[:decimals])
	if frac[decimals] >= '5' {
		digits = increment(digits)
	}
	n := len(digits) - decimals
	out := string(digits[:n])
	if decimals > 0 {
		out += "." + string(digits[n:])
	}

	r, err := strconv.ParseFloat(out, 64)
	if err != nil || r == 0 {
		return 0
	}
	if v < 0 {
		return -r
	}
	return r
}

// increment adds one to a run of ASCII decimal digits.
func increment(d []byte) []byte {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i] < '9' {
			d[i]++
			return d
		}
		d[i] = '0'
	}
	return append([]byte{'1'}, d...)
}

// Format renders v the way the widget displays numbers: no trailing zeros and
// no exponent.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
