package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the gateway.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // stowgate_requests_total{location,status}
	RequestDuration *prometheus.HistogramVec // stowgate_request_duration_seconds{location}
	BytesSent       *prometheus.CounterVec   // stowgate_bytes_sent_total{location}
	InFlight        prometheus.Gauge         // stowgate_requests_in_flight
}

// NewMetrics registers the gateway collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: reg,

		RequestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stowgate_requests_total",
			Help: "Object requests by location and final status",
		}, []string{"location", "status"}),

		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stowgate_request_duration_seconds",
			Help:    "Object request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"location"}),

		BytesSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "stowgate_bytes_sent_total",
			Help: "Object body bytes delivered to clients",
		}, []string{"location"}),

		InFlight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "stowgate_requests_in_flight",
			Help: "Object requests currently being served",
		}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records the outcome of one object request.
func (m *Metrics) RecordRequest(location string, status int, delivered uint64, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(location, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(location).Observe(elapsed.Seconds())
	m.BytesSent.WithLabelValues(location).Add(float64(delivered))
}
