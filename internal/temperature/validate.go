package temperature

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxDecimals is the most fractional digits an input may carry.
const MaxDecimals = 6

var inputPattern = regexp.MustCompile(`^-?\d+(\.\d{1,6})?$`)

// Kind classifies a validation failure.
type Kind int

const (
	KindNone Kind = iota
	KindEmptyInput
	KindFormat
	KindBelowAbsoluteZero
	KindAboveUpperBound
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrFormat            = errors.New("malformed number")
	ErrBelowAbsoluteZero = errors.New("below absolute zero")
	ErrAboveUpperBound   = errors.New("above upper bound")
)

var kinds = map[Kind]struct {
	name     string
	message  string
	sentinel error
}{
	KindEmptyInput:        {"empty_input", "Please enter a temperature", ErrEmptyInput},
	KindFormat:            {"format_error", "Enter a valid number (maximum 6 decimals)", ErrFormat},
	KindBelowAbsoluteZero: {"below_absolute_zero", "Temperature cannot be below -273.15°C (absolute zero)", ErrBelowAbsoluteZero},
	KindAboveUpperBound:   {"above_upper_bound", "Temperature is too high (maximum 6000°C)", ErrAboveUpperBound},
}

func (k Kind) String() string {
	return kinds[k].name
}

// Message is the fixed user-facing text for k.
func (k Kind) Message() string {
	return kinds[k].message
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "" {
		*k = KindNone
		return nil
	}
	for kind, info := range kinds {
		if info.name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown validation kind %q", s)
}

// ValidationError is returned for input that fails [Validate]. It matches the
// Err* sentinels with errors.Is.
type ValidationError struct {
	Kind  Kind
	Input string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid temperature %q: %s", e.Input, kinds[e.Kind].sentinel)
}

func (e *ValidationError) Unwrap() error {
	return kinds[e.Kind].sentinel
}

// Outcome is the result of validating one raw input. Message is set iff the
// input is invalid.
type Outcome struct {
	Valid   bool   `json:"valid"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"error,omitempty"`
	input   string
}

// Err returns nil for a valid outcome and a *ValidationError otherwise.
func (o Outcome) Err() error {
	if o.Valid {
		return nil
	}
	return &ValidationError{Kind: o.Kind, Input: o.input}
}

func invalid(k Kind, input string) Outcome {
	return Outcome{Kind: k, Message: k.Message(), input: input}
}

// Validate checks raw user input against the format and physical range rules.
func Validate(input string) Outcome {
	s := strings.TrimSpace(input)
	if s == "" {
		return invalid(KindEmptyInput, input)
	}
	if !inputPattern.MatchString(s) {
		return invalid(KindFormat, input)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return invalid(KindFormat, input)
	}

	switch c := Celsius(v); {
	case c < AbsoluteZero:
		return invalid(KindBelowAbsoluteZero, input)
	case c > UpperBound:
		return invalid(KindAboveUpperBound, input)
	}
	return Outcome{Valid: true, input: input}
}

// Parse validates input and returns its value together with the number of
// fractional digits the user typed.
func Parse(input string) (Celsius, int, error) {
	if err := Validate(input).Err(); err != nil {
		return 0, 0, err
	}
	s := strings.TrimSpace(input)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return Celsius(v), DecimalPlaces(s), nil
}

// DecimalPlaces counts the digits after the decimal point in text, 0 if there
// is none. It works on the text so float artifacts never leak in.
func DecimalPlaces(text string) int {
	_, frac, ok := strings.Cut(strings.TrimSpace(text), ".")
	if !ok {
		return 0
	}
	frac, _, _ = strings.Cut(frac, ".")
	return len(frac)
}
