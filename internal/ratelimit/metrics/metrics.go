package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions    *prometheus.CounterVec
	StoreFailure prometheus.Counter
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_ratelimit_decisions_total",
			Help: "Rate limit checks by endpoint class and outcome (allowed/denied)",
		}, []string{"class", "outcome"}),
		StoreFailure: f.NewCounter(prometheus.CounterOpts{
			Name: "govdash_ratelimit_store_failures_total",
			Help: "Checks that failed open because the bucket store errored",
		}),
	}
}

func (m *Metrics) IncrementDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.Decisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) IncrementStoreFailure() {
	if m != nil {
		m.StoreFailure.Inc()
	}
}
