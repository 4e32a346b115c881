package converter

import (
	"database/sql"
	"log/slog"
	"net/http"

	"thermogauge/internal/modules/converter/controller"
	"thermogauge/internal/modules/converter/repository"
	"thermogauge/internal/modules/converter/service"
	"thermogauge/internal/mqtt"
	"thermogauge/internal/observability"
)

// RegisterFeature wires the converter pages, partials and API onto mux. When
// subscriber is non-nil, station telemetry flows into the same pipeline.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, pageSize int, metrics *observability.Metrics, logger *slog.Logger, subscriber *mqtt.Subscriber) *service.Service {
	converterRepository := repository.NewRepository(db)
	converterService := service.NewService(converterRepository, metrics, logger)
	converterController := controller.NewConverterController(converterService, pageSize)
	converterController.RegisterRoutes(mux)

	if subscriber != nil {
		converterService.Register(subscriber)
	}
	return converterService
}
