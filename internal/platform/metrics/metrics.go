package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-wide Prometheus metrics: inbound HTTP traffic and
// outbound backend calls. Domain modules keep their own metrics packages.
type Metrics struct {
	HTTPRequestDuration    *prometheus.HistogramVec
	BackendRequestDuration *prometheus.HistogramVec
	BackendFailures        *prometheus.CounterVec
}

// New creates and registers all platform metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers on reg; tests pass a fresh prometheus.NewRegistry().
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "govdash_http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),

		BackendRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "govdash_backend_request_duration_seconds",
			Help:    "Duration of calls to the analytics backend by endpoint",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),

		BackendFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_backend_failures_total",
			Help: "Backend calls that failed, by endpoint and reason",
		}, []string{"endpoint", "reason"}),
	}
}

// ObserveHTTPRequest records one inbound request.
func (m *Metrics) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if m != nil {
		m.HTTPRequestDuration.WithLabelValues(route, method, statusClass(status)).Observe(d.Seconds())
	}
}

// ObserveBackendCall records the latency of a backend call.
func (m *Metrics) ObserveBackendCall(endpoint string, d time.Duration) {
	if m != nil {
		m.BackendRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

// IncrementBackendFailure records a failed backend call.
func (m *Metrics) IncrementBackendFailure(endpoint, reason string) {
	if m != nil {
		m.BackendFailures.WithLabelValues(endpoint, reason).Inc()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
