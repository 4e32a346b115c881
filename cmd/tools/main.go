package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"thermogauge/internal/config"
	"thermogauge/internal/db"
	"thermogauge/internal/logging"
	"thermogauge/internal/migrate"
	"thermogauge/internal/mqtt"
)

const usage = `usage: %s <command>
  migrate                      apply pending schema migrations
  status                       list applied migrations
  publish <station> <celsius>  send one telemetry message to the MQTT broker
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg, "dev", "thermogauge-tools")
	slog.SetDefault(logger)

	ctx := context.Background()
	switch os.Args[1] {
	case "migrate":
		withDB(cfg, logger, func(conn *sql.DB) error {
			if err := migrate.Run(ctx, conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		})
	case "status":
		withDB(cfg, logger, func(conn *sql.DB) error {
			versions, err := migrate.Applied(ctx, conn)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			if len(versions) == 0 {
				fmt.Println("no migrations applied")
				return nil
			}
			fmt.Println("applied:", strings.Join(versions, ", "))
			return nil
		})
	case "publish":
		if len(os.Args) != 4 {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
			os.Exit(1)
		}
		if err := publish(ctx, cfg, logger, os.Args[2], os.Args[3]); err != nil {
			fmt.Fprintf(os.Stderr, "publish: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func withDB(cfg config.Config, logger *slog.Logger, fn func(*sql.DB) error) {
	conn, err := db.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	err = fn(conn)
	if closeErr := db.Close(conn); closeErr != nil {
		slog.Error("db close", "err", closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func publish(ctx context.Context, cfg config.Config, logger *slog.Logger, stationID, celsius string) error {
	c, err := strconv.ParseFloat(celsius, 64)
	if err != nil {
		return fmt.Errorf("celsius %q: %w", celsius, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p := mqtt.NewPublisher(cfg, cfg.MQTTClientID+"-tools", logger)
	if err := p.Connect(ctx); err != nil {
		return err
	}
	defer p.Disconnect()

	t := mqtt.Telemetry{
		StationID:   stationID,
		Timestamp:   time.Now().UTC(),
		Temperature: &c,
	}
	if err := p.PublishTelemetry(ctx, t); err != nil {
		return err
	}
	fmt.Printf("published %s °C for %s to %s\n", celsius, stationID, mqtt.StationTopic(cfg.MQTTTopic, stationID))
	return nil
}
