package controller

import (
	"errors"
	"net/http"
	"strconv"

	"thermogauge/internal/temperature"
)

const (
	defaultHistoryPageSize = 20
	defaultAPILimit        = 100
	maxAPILimit            = 1000
)

// parseLimitQuery reads ?limit= (default 100, 1..1000).
func parseLimitQuery(r *http.Request) (limit int, err error) {
	limit = defaultAPILimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return 0, errors.New("'limit' must be > 0")
		}
		if n > maxAPILimit {
			return 0, errors.New("'limit' must be <= 1000")
		}
		limit = n
	}
	return limit, nil
}

// parseDecimalsQuery reads ?decimals=. An absent parameter returns nil so the
// precision follows the input. Range checks are left to the service.
func parseDecimalsQuery(r *http.Request) (*int, error) {
	s := r.URL.Query().Get("decimals")
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, errors.New("invalid 'decimals' (expected integer 0-" + strconv.Itoa(temperature.MaxDecimals) + ")")
	}
	return &n, nil
}

// parseHistoryPage returns the 1-based page number from the request (default 1, min 1).
func parseHistoryPage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
