package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"thermogauge/internal/config"
	"thermogauge/internal/db"
	"thermogauge/internal/httpapi"
	"thermogauge/internal/migrate"
	"thermogauge/internal/modules/converter"
	converterviews "thermogauge/internal/modules/converter/views"
	"thermogauge/internal/mqtt"
	"thermogauge/internal/observability"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"sqliteLogSQL", cfg.SQLiteLogSQL,
		"mqttEnabled", cfg.MQTTEnabled,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"historyPageSize", cfg.HistoryPageSize,
	)

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}
	logger.Info("database ready")

	if err := converterviews.LoadTemplates(); err != nil {
		return err
	}

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	var subscriber *mqtt.Subscriber
	var mqttStatus httpapi.ConnectionStatus
	if cfg.MQTTEnabled {
		subscriber = mqtt.NewSubscriber(cfg, logger, metrics)
		mqttStatus = subscriber
	}

	mux := httpapi.NewMux(dbConn, cfg.StaticDir, mqttStatus, registry)
	// telemetry handler must be set before Connect
	converter.RegisterFeature(mux, dbConn, cfg.HistoryPageSize, metrics, logger, subscriber)

	if subscriber != nil {
		// a missing broker must not block startup
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt not connected yet (retrying in background)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg, mux, metrics)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		logger.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
