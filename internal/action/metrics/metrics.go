package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for governance action initiation.
type Metrics struct {
	Initiations       *prometheus.CounterVec
	InitiateDuration  prometheus.Histogram
	StatusTransitions *prometheus.CounterVec
}

// New creates a new Metrics instance with all action metrics registered.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Initiations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_actions_initiations_total",
			Help: "Action initiation attempts by outcome",
		}, []string{"outcome"}), // outcome: "created", "existing", "failed"

		InitiateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "govdash_actions_initiate_duration_seconds",
			Help:    "Duration of Initiate including the backend round trip",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		StatusTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_actions_status_transitions_total",
			Help: "Action status changes by target status",
		}, []string{"status"}),
	}
}

// ObserveInitiate records one Initiate call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveInitiate(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Initiations.WithLabelValues(outcome).Inc()
	m.InitiateDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.StatusTransitions.WithLabelValues(status).Inc()
	}
}
