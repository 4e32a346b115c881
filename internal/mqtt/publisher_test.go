package mqtt

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"thermogauge/internal/config"
)

func newTestPublisher() *Publisher {
	cfg := config.Config{MQTTBroker: "127.0.0.1", MQTTPort: 1, MQTTTopic: "stations/+/telemetry"}
	return NewPublisher(cfg, "publisher-test", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStationTopic(t *testing.T) {
	tests := []struct {
		pattern, station, want string
	}{
		{"stations/+/telemetry", "pico-1", "stations/pico-1/telemetry"},
		{"lab/#", "pico-2", "lab/pico-2"},
		{"fixed/topic", "pico-3", "fixed/topic"},
		{"+/+/t", "a", "a/+/t"},
	}
	for _, tt := range tests {
		if got := StationTopic(tt.pattern, tt.station); got != tt.want {
			t.Errorf("StationTopic(%q, %q) = %q, want %q", tt.pattern, tt.station, got, tt.want)
		}
	}
}

func TestPublishTelemetry_rejectsInvalidMessage(t *testing.T) {
	p := newTestPublisher()
	err := p.PublishTelemetry(context.Background(), Telemetry{StationID: "pico-1"})
	if err == nil || !strings.Contains(err.Error(), "timestamp") {
		t.Fatalf("err = %v, want timestamp validation error", err)
	}
}

func TestPublishTelemetry_requiresConnection(t *testing.T) {
	p := newTestPublisher()
	err := p.PublishTelemetry(context.Background(), Telemetry{
		StationID:   "pico-1",
		Timestamp:   time.Now(),
		Temperature: ptr(21.5),
	})
	if err == nil || !strings.Contains(err.Error(), "not connected") {
		t.Fatalf("err = %v, want not connected", err)
	}
}

func TestPublisherConnect_failsWithoutBroker(t *testing.T) {
	p := newTestPublisher()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Connect(ctx); err == nil {
		p.Disconnect()
		t.Fatal("Connect() error = nil, want failure for unreachable broker")
	}
}
