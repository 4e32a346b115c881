package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"thermogauge/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher sends telemetry as a station would. It is used by the tools
// command to feed a running server.
type Publisher struct {
	client mqtt.Client
	cfg    config.Config
	logger *slog.Logger
}

func NewPublisher(cfg config.Config, clientID string, logger *slog.Logger) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	return &Publisher{client: mqtt.NewClient(opts), cfg: cfg, logger: logger}
}

// Connect makes a single connection attempt bounded by ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishTelemetry publishes t to the station's topic, derived from the
// configured subscription pattern.
func (p *Publisher) PublishTelemetry(ctx context.Context, t Telemetry) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if !p.client.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	topic := StationTopic(p.cfg.MQTTTopic, t.StationID)
	token := p.client.Publish(topic, 1, false, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("published telemetry", "topic", topic, "station_id", t.StationID)
	return nil
}

func (p *Publisher) Disconnect() {
	p.client.Disconnect(250)
}

// StationTopic fills a subscription pattern with a concrete station id:
// the first "+" is replaced, a trailing "#" becomes the id, and a pattern
// without wildcards is returned unchanged.
func StationTopic(pattern, stationID string) string {
	if strings.Contains(pattern, "+") {
		return strings.Replace(pattern, "+", stationID, 1)
	}
	if base, ok := strings.CutSuffix(pattern, "#"); ok {
		return base + stationID
	}
	return pattern
}
