package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for sign-in and sign-out.
type Metrics struct {
	Logins                  *prometheus.CounterVec
	Logouts                 prometheus.Counter
	RevocationCheckDuration prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_auth_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "rejected", "error"

		Logouts: f.NewCounter(prometheus.CounterOpts{
			Name: "govdash_auth_logouts_total",
			Help: "Session tokens revoked by sign-out",
		}),

		RevocationCheckDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "govdash_auth_is_token_revoked_duration_ms",
			Help:    "Latency of token revocation checks in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
	}
}

func (m *Metrics) IncrementLogin(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementLogout() {
	if m != nil {
		m.Logouts.Inc()
	}
}

// ObserveRevocationCheck records one revocation lookup started at start.
func (m *Metrics) ObserveRevocationCheck(start time.Time) {
	if m == nil {
		return
	}
	m.RevocationCheckDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
