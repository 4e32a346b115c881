package mqtt

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"thermogauge/internal/config"
	"thermogauge/internal/observability"
	"thermogauge/internal/temperature"
)

func ptr[T any](v T) *T { return &v }

func newTestSubscriber(t *testing.T) (*Subscriber, *observability.Metrics, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := observability.NewUnregisteredMetrics()
	s := &Subscriber{
		cfg:     config.Config{MQTTTopic: "stations/+/telemetry"},
		logger:  logger,
		metrics: metrics,
		stopCh:  make(chan struct{}),
	}
	return s, metrics, &buf
}

func outcomes(m *observability.Metrics, outcome string) float64 {
	return testutil.ToFloat64(m.TelemetryMessages.WithLabelValues(outcome))
}

func TestTelemetryValidate(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      Telemetry
		wantErr bool
	}{
		{"temperature only", Telemetry{StationID: "s1", Timestamp: ts, Temperature: ptr(21.5)}, false},
		{"all readings", Telemetry{StationID: "s1", Timestamp: ts, Temperature: ptr(-3.0), Humidity: ptr(55.0), Pressure: ptr(1013.2)}, false},
		{"humidity bounds inclusive", Telemetry{StationID: "s1", Timestamp: ts, Humidity: ptr(100.0)}, false},
		{"missing station", Telemetry{Timestamp: ts, Temperature: ptr(1.0)}, true},
		{"missing timestamp", Telemetry{StationID: "s1", Temperature: ptr(1.0)}, true},
		{"humidity too high", Telemetry{StationID: "s1", Timestamp: ts, Humidity: ptr(100.1)}, true},
		{"negative humidity", Telemetry{StationID: "s1", Timestamp: ts, Humidity: ptr(-1.0)}, true},
		{"zero pressure", Telemetry{StationID: "s1", Timestamp: ts, Pressure: ptr(0.0)}, true},
		{"no readings", Telemetry{StationID: "s1", Timestamp: ts, Battery: ptr(3.3)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHandleMessage_passesValidTelemetryToHandler(t *testing.T) {
	s, m, _ := newTestSubscriber(t)

	var got Telemetry
	calls := 0
	s.SetHandler(func(_ context.Context, tel Telemetry) error {
		calls++
		got = tel
		return nil
	})

	payload := []byte(`{"station_id":"pico-1","timestamp":"2026-03-01T12:00:00Z","temperature_c":21.25,"sequence":7}`)
	s.handleMessage(context.Background(), "stations/pico-1/telemetry", payload)

	if calls != 1 {
		t.Fatalf("handler calls = %d; want 1", calls)
	}
	if got.StationID != "pico-1" || got.Temperature == nil || *got.Temperature != 21.25 {
		t.Errorf("handler got %+v", got)
	}
	if got.Sequence == nil || *got.Sequence != 7 {
		t.Errorf("sequence = %v; want 7", got.Sequence)
	}
	if n := outcomes(m, outcomeHandled); n != 1 {
		t.Errorf("handled = %v; want 1", n)
	}
}

func TestHandleMessage_badPayloadsNeverReachHandler(t *testing.T) {
	s, m, buf := newTestSubscriber(t)
	s.SetHandler(func(context.Context, Telemetry) error {
		t.Fatal("handler called for invalid message")
		return nil
	})

	s.handleMessage(context.Background(), "t", []byte(`not json`))
	s.handleMessage(context.Background(), "t", []byte(`{"timestamp":"2026-03-01T12:00:00Z","temperature_c":1}`))

	if n := outcomes(m, outcomeInvalid); n != 2 {
		t.Errorf("invalid = %v; want 2", n)
	}
	if !bytes.Contains(buf.Bytes(), []byte("failed to parse telemetry message")) {
		t.Error("parse failure not logged")
	}
	if !bytes.Contains(buf.Bytes(), []byte("invalid telemetry message")) {
		t.Error("validation failure not logged")
	}
}

func TestHandleMessage_handlerErrorsAreClassified(t *testing.T) {
	s, m, _ := newTestSubscriber(t)
	payload := []byte(`{"station_id":"pico-1","timestamp":"2026-03-01T12:00:00Z","temperature_c":9000}`)

	s.SetHandler(func(context.Context, Telemetry) error {
		return &temperature.ValidationError{Kind: temperature.KindAboveUpperBound, Input: "9000"}
	})
	s.handleMessage(context.Background(), "t", payload)

	s.SetHandler(func(context.Context, Telemetry) error {
		return errors.New("disk full")
	})
	s.handleMessage(context.Background(), "t", payload)

	if n := outcomes(m, outcomeRejected); n != 1 {
		t.Errorf("rejected = %v; want 1", n)
	}
	if n := outcomes(m, outcomeFailed); n != 1 {
		t.Errorf("failed = %v; want 1", n)
	}
}

func TestSetConnected_tracksGauge(t *testing.T) {
	s, m, _ := newTestSubscriber(t)

	s.setConnected(true)
	if v := testutil.ToFloat64(m.MQTTConnected); v != 1 {
		t.Errorf("mqtt_connected = %v; want 1", v)
	}
	// no client yet, so IsConnected stays false
	if s.IsConnected() {
		t.Error("IsConnected() = true without a client")
	}
	s.setConnected(false)
	if v := testutil.ToFloat64(m.MQTTConnected); v != 0 {
		t.Errorf("mqtt_connected = %v; want 0", v)
	}
}

func TestConnect_afterDisconnectFails(t *testing.T) {
	s := NewSubscriber(config.Config{
		MQTTBroker:   "127.0.0.1",
		MQTTPort:     1,
		MQTTClientID: "test",
		MQTTTopic:    "t",
	}, slog.New(slog.DiscardHandler), observability.NewUnregisteredMetrics())

	s.Disconnect()
	s.Disconnect()

	if err := s.Connect(context.Background()); err == nil {
		t.Fatal("Connect after Disconnect = nil; want error")
	}
}
