package temperature

type (
	// Celsius is a temperature in °C.
	Celsius float64

	// Fahrenheit is a temperature in °F.
	Fahrenheit float64

	// Kelvin is a temperature in K.
	Kelvin float64
)

const (
	// AbsoluteZero is the lowest accepted input.
	AbsoluteZero Celsius = -273.15
	// UpperBound is the highest accepted input, roughly the surface of the sun.
	UpperBound Celsius = 6000

	kelvinOffset = 273.15
)

// C2F converts a temp in Celsius to Fahrenheit.
func C2F(c Celsius) Fahrenheit {
	return Fahrenheit(c*9/5 + 32)
}

// C2K converts a temp in Celsius to Kelvin.
func C2K(c Celsius) Kelvin {
	return Kelvin(c + kelvinOffset)
}

// Scale names one of the three thermometers.
type Scale string

const (
	ScaleCelsius    Scale = "celsius"
	ScaleFahrenheit Scale = "fahrenheit"
	ScaleKelvin     Scale = "kelvin"
)

// Scales lists the thermometers in display order.
var Scales = []Scale{ScaleCelsius, ScaleFahrenheit, ScaleKelvin}

// Unit returns the unit symbol for s, or "" for an unknown scale.
func (s Scale) Unit() string {
	switch s {
	case ScaleCelsius:
		return "°C"
	case ScaleFahrenheit:
		return "°F"
	case ScaleKelvin:
		return "K"
	default:
		return ""
	}
}

// Valid reports whether s is one of the known scales.
func (s Scale) Valid() bool {
	_, ok := gaugeRanges[s]
	return ok
}
