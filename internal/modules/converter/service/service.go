package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"thermogauge/internal/modules/converter/repository"
	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/observability"
	"thermogauge/internal/temperature"
)

// ErrDecimalsOutOfRange is returned when a caller asks for a precision
// outside [0, temperature.MaxDecimals].
var ErrDecimalsOutOfRange = errors.New("decimals out of range")

// HistoryPage is one page of the conversion log, newest first.
type HistoryPage struct {
	Items      []types.Conversion
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

type Service struct {
	repository repository.ConversionRepository
	metrics    *observability.Metrics
	logger     *slog.Logger
	clock      clockwork.Clock
}

type Option func(*Service)

// WithClock replaces the wall clock used to stamp stored conversions.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func NewService(repository repository.ConversionRepository, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repository: repository,
		metrics:    metrics,
		logger:     logger,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview validates and converts req without recording anything.
func (s *Service) Preview(req types.Request) (types.Result, error) {
	if req.Decimals != nil && (*req.Decimals < 0 || *req.Decimals > temperature.MaxDecimals) {
		return types.Result{}, fmt.Errorf("%w: %d (must be 0-%d)", ErrDecimalsOutOfRange, *req.Decimals, temperature.MaxDecimals)
	}

	c, places, err := temperature.Parse(req.Input)
	if err != nil {
		return types.Result{}, err
	}

	decimals := places
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	reading := temperature.Convert(c, decimals)
	band := temperature.ColorFor(reading.Celsius)

	return types.Result{
		Input:    req.Input,
		Decimals: decimals,
		Reading:  reading,
		Band:     band,
		Color:    band.Color(),
		Gauges:   temperature.Gauges(reading),
	}, nil
}

// Convert validates req.Input, converts it and records it in the conversion
// log. Invalid input returns a *temperature.ValidationError and stores
// nothing. If only the write to the log fails, the converted Result is
// returned together with the error.
func (s *Service) Convert(ctx context.Context, req types.Request) (types.Result, error) {
	result, err := s.Preview(req)
	if err != nil {
		var verr *temperature.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailures.WithLabelValues(string(req.Source), verr.Kind.String()).Inc()
			s.logger.Debug("conversion rejected",
				"source", req.Source,
				"kind", verr.Kind.String(),
			)
		}
		return types.Result{}, err
	}
	reading := result.Reading
	decimals := result.Decimals

	id, err := s.repository.InsertConversion(ctx, types.Conversion{
		CreatedAt: s.clock.Now().UTC(),
		Source:    req.Source,
		StationID: req.StationID,
		Input:     req.Input,
		Decimals:  decimals,
		Reading:   reading,
	})
	if err != nil {
		s.metrics.StorageErrors.Inc()
		s.logger.Error("failed to store conversion",
			"source", req.Source,
			"station_id", req.StationID,
			"error", err,
		)
		return result, fmt.Errorf("store conversion: %w", err)
	}
	result.ID = id

	s.metrics.Conversions.WithLabelValues(string(req.Source)).Inc()
	s.logger.Debug("conversion stored",
		"id", id,
		"source", req.Source,
		"celsius", float64(reading.Celsius),
		"decimals", decimals,
	)
	return result, nil
}

// History returns page (1-based) of the conversion log. Pages past the end
// come back empty with the real totals.
func (s *Service) History(ctx context.Context, page, pageSize int) (HistoryPage, error) {
	page = max(page, 1)
	pageSize = max(pageSize, 1)

	total, err := s.repository.Count(ctx)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("count conversions: %w", err)
	}
	items, err := s.repository.GetRecent(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("get conversions: %w", err)
	}
	return HistoryPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: max((total+pageSize-1)/pageSize, 1),
	}, nil
}

// Recent returns the newest limit conversions.
func (s *Service) Recent(ctx context.Context, limit int) ([]types.Conversion, error) {
	items, err := s.repository.GetRecent(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("get conversions: %w", err)
	}
	return items, nil
}

// Stations returns the latest conversion for each station that has reported.
func (s *Service) Stations(ctx context.Context) ([]types.Conversion, error) {
	items, err := s.repository.GetLatestByStation(ctx)
	if err != nil {
		return nil, fmt.Errorf("get station conversions: %w", err)
	}
	return items, nil
}
