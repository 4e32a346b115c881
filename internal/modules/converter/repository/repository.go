package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"thermogauge/internal/modules/converter/types"
	"thermogauge/internal/temperature"
)

//go:embed sql/insert-conversion.sql
var insertConversionSQL string

//go:embed sql/get-recent-conversions.sql
var getRecentConversionsSQL string

//go:embed sql/get-conversions-count.sql
var getConversionsCountSQL string

//go:embed sql/get-latest-by-station.sql
var getLatestByStationSQL string

// createdAtLayout is fixed width so created_at sorts correctly as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

type ConversionRepository interface {
	InsertConversion(ctx context.Context, c types.Conversion) (int64, error)
	GetRecent(ctx context.Context, limit int, offset int) ([]types.Conversion, error)
	Count(ctx context.Context) (int, error)
	GetLatestByStation(ctx context.Context) ([]types.Conversion, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ConversionRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertConversion(ctx context.Context, c types.Conversion) (int64, error) {
	var stationID any
	if c.StationID != "" {
		stationID = c.StationID
	}
	res, err := r.db.ExecContext(ctx, insertConversionSQL,
		c.CreatedAt.UTC().Format(createdAtLayout),
		string(c.Source),
		stationID,
		c.Input,
		c.Decimals,
		float64(c.Reading.Celsius),
		float64(c.Reading.Fahrenheit),
		float64(c.Reading.Kelvin),
	)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert conversion id: %w", err)
	}
	return id, nil
}

func (r *repositoryImpl) GetRecent(ctx context.Context, limit int, offset int) ([]types.Conversion, error) {
	rows, err := r.db.QueryContext(ctx, getRecentConversionsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close recent conversions rows", "error", err)
		}
	}()
	return scanConversions(rows)
}

func (r *repositoryImpl) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, getConversionsCountSQL).Scan(&n)
	return n, err
}

func (r *repositoryImpl) GetLatestByStation(ctx context.Context) ([]types.Conversion, error) {
	rows, err := r.db.QueryContext(ctx, getLatestByStationSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close station conversions rows", "error", err)
		}
	}()
	return scanConversions(rows)
}

func scanConversions(rows *sql.Rows) ([]types.Conversion, error) {
	var out []types.Conversion
	for rows.Next() {
		var (
			rec        types.Conversion
			ts, source string
			stationID  sql.NullString
			c, f, k    float64
		)
		if err := rows.Scan(&rec.ID, &ts, &source, &stationID, &rec.Input, &rec.Decimals, &c, &f, &k); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", ts, err)
		}
		rec.CreatedAt = t
		rec.Source = types.Source(source)
		rec.StationID = stationID.String
		rec.Reading = temperature.Reading{
			Celsius:    temperature.Celsius(c),
			Fahrenheit: temperature.Fahrenheit(f),
			Kelvin:     temperature.Kelvin(k),
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
