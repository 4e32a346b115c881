package controller

import (
	"context"
	"net/http"

	"thermogauge/internal/modules/converter/service"
	"thermogauge/internal/modules/converter/types"
)

// ConverterService is what the HTTP layer needs from the conversion pipeline.
type ConverterService interface {
	Preview(req types.Request) (types.Result, error)
	Convert(ctx context.Context, req types.Request) (types.Result, error)
	History(ctx context.Context, page, pageSize int) (service.HistoryPage, error)
	Recent(ctx context.Context, limit int) ([]types.Conversion, error)
	Stations(ctx context.Context) ([]types.Conversion, error)
}

type ConverterController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type converterControllerImpl struct {
	service  ConverterService
	pageSize int
}

func NewConverterController(service ConverterService, pageSize int) ConverterController {
	if pageSize < 1 {
		pageSize = defaultHistoryPageSize
	}
	return &converterControllerImpl{service: service, pageSize: pageSize}
}

func (c *converterControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleConverter)
	mux.HandleFunc("POST /convert", c.handleConvertPartial)
	mux.HandleFunc("GET /history", c.handleHistory)
	mux.HandleFunc("GET /partials/history", c.handleHistoryPartial)
	mux.HandleFunc("GET /partials/stations", c.handleStationsPartial)

	mux.HandleFunc("GET /api/v1/convert", c.handleAPIConvert)
	mux.HandleFunc("POST /api/v1/validate", c.handleAPIValidate)
	mux.HandleFunc("GET /api/v1/conversions", c.handleAPIConversions)
}
