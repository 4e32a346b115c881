// Package temperature holds the pure conversion core: input validation,
// Celsius to Fahrenheit/Kelvin conversion, rounding, and the thermometer
// gauge mappings used by the presentation layer.
//
// # Input format
//
// Accepted input is an optional leading minus sign, one or more ASCII digits
// and, optionally, a decimal point followed by one to six digits:
//
//	23   -40   25.5   -273.15   100.123456
//
// Exponents, thousands separators and a leading "+" are rejected. The value
// must lie in [-273.15, 6000] °C; both bounds are inclusive.
//
// # Precision
//
// The web flow converts at the precision the user typed, counted on the text
// with [DecimalPlaces]. Values are rounded with [Round], half away from zero
// on the shortest decimal form of the float, so 2.675 rounds to 2.68 even
// though its binary value sits just below the tie.
//
// # Gauges
//
// Every thermometer covers -50 °C to 150 °C, expressed in its own scale:
//
//	celsius     -50     ..  150
//	fahrenheit  -58     ..  302
//	kelvin      223.15  ..  423.15
//
// The liquid colour of all three thermometers comes from the Celsius value.
package temperature
