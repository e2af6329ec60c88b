package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts checklist activity.
type Metrics struct {
	Completions *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Completions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_fieldwork_task_completions_total",
			Help: "Task completion requests by outcome",
		}, []string{"outcome"}), // outcome: "completed", "already_completed"
	}
}

func (m *Metrics) IncrementCompletion(outcome string) {
	if m != nil {
		m.Completions.WithLabelValues(outcome).Inc()
	}
}
