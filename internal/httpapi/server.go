package httpapi

import (
	"net/http"
	"time"

	"thermogauge/internal/config"
	"thermogauge/internal/observability"
)

func NewServer(cfg config.Config, mux *http.ServeMux, metrics *observability.Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
