package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"thermogauge/internal/config"
	"thermogauge/internal/observability"
	"thermogauge/internal/temperature"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Outcome labels for the telemetry_messages_total counter.
const (
	outcomeHandled  = "handled"
	outcomeInvalid  = "invalid"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Handler consumes a decoded, validated telemetry message.
type Handler func(ctx context.Context, t Telemetry) error

type Subscriber struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	handlerMu sync.RWMutex
	handler   Handler
}

// SetHandler sets the callback invoked for every valid telemetry message.
func (s *Subscriber) SetHandler(h Handler) {
	s.handlerMu.Lock()
	s.handler = h
	s.handlerMu.Unlock()
}

func NewSubscriber(cfg config.Config, logger *slog.Logger, metrics *observability.Metrics) *Subscriber {
	s := &Subscriber{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		stopCh:  make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		// clean sessions drop subscriptions, so resubscribe after every reconnect
		if err := s.subscribe(c); err != nil {
			logger.Error("mqtt resubscribe failed", "topic", cfg.MQTTTopic, "error", err)
		}
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s
}

// Connect establishes the broker connection. The subscription itself is made
// by the on-connect callback.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			// paho keeps retrying in the background until Disconnect
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}
}

func (s *Subscriber) subscribe(c mqtt.Client) error {
	topic := s.cfg.MQTTTopic
	qos := byte(1) // at least once

	token := c.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(context.Background(), msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(ctx context.Context, topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var t Telemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		s.logger.Warn("failed to parse telemetry message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		s.count(outcomeInvalid)
		return
	}

	if err := t.Validate(); err != nil {
		s.logger.Warn("invalid telemetry message",
			"topic", topic,
			"station_id", t.StationID,
			"error", err,
		)
		s.count(outcomeInvalid)
		return
	}

	s.handlerMu.RLock()
	h := s.handler
	s.handlerMu.RUnlock()
	if h == nil {
		s.count(outcomeHandled)
		return
	}

	err := h(ctx, t)
	var verr *temperature.ValidationError
	switch {
	case err == nil:
		s.logger.Debug("processed telemetry message",
			"station_id", t.StationID,
			"timestamp", t.Timestamp,
		)
		s.count(outcomeHandled)
	case errors.As(err, &verr):
		s.logger.Warn("telemetry temperature rejected",
			"topic", topic,
			"station_id", t.StationID,
			"kind", verr.Kind.String(),
		)
		s.count(outcomeRejected)
	default:
		s.logger.Error("telemetry handler failed",
			"topic", topic,
			"station_id", t.StationID,
			"error", err,
		)
		s.count(outcomeFailed)
	}
}

func (s *Subscriber) count(outcome string) {
	if s.metrics != nil {
		s.metrics.TelemetryMessages.WithLabelValues(outcome).Inc()
	}
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client != nil && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}

	// not under s.mu; the paho callbacks take it
	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
	if s.metrics != nil {
		if v {
			s.metrics.MQTTConnected.Set(1)
		} else {
			s.metrics.MQTTConnected.Set(0)
		}
	}
}
