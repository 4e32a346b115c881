package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "thermogauge"

// Metrics holds the Prometheus collectors for conversions, telemetry and HTTP traffic.
type Metrics struct {
	Conversions        *prometheus.CounterVec // labels: source={web,api,mqtt,cli}
	ValidationFailures *prometheus.CounterVec // labels: source, kind
	StorageErrors      prometheus.Counter
	TelemetryMessages  *prometheus.CounterVec // labels: outcome={handled,invalid,rejected,failed}
	MQTTConnected      prometheus.Gauge

	HTTPRequests        *prometheus.CounterVec   // labels: method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: method, route
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors. Each server run builds its own.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Conversions,
		m.ValidationFailures,
		m.StorageErrors,
		m.TelemetryMessages,
		m.MQTTConnected,
		m.HTTPRequests,
		m.HTTPRequestDuration,
	)
	return m
}

// NewUnregisteredMetrics creates Metrics that are not attached to any
// registry. Tests and one-shot commands use it to avoid "already registered"
// panics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Successful temperature conversions by source.",
		}, []string{"source"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected temperature inputs by source and failure kind.",
		}, []string{"source", "kind"}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Conversions that could not be written to the conversion log.",
		}),
		TelemetryMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_messages_total",
			Help:      "Station telemetry messages by handling outcome.",
		}, []string{"outcome"}),
		MQTTConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mqtt_connected",
			Help:      "1 while the telemetry subscriber is connected to the broker, 0 otherwise.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
	}
}
