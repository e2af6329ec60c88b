package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the snapshot poller.
type Metrics struct {
	Fetches      *prometheus.CounterVec
	PollDuration prometheus.Histogram
	LastSuccess  *prometheus.GaugeVec
	Subscribers  prometheus.Gauge
}

// New creates a new Metrics instance with all poller metrics registered.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_snapshot_fetches_total",
			Help: "Backend resource fetches by resource and outcome",
		}, []string{"resource", "outcome"}), // outcome: "ok", "failed"

		PollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "govdash_snapshot_poll_duration_seconds",
			Help:    "Duration of one full poll across all resources",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		LastSuccess: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "govdash_snapshot_last_success_timestamp_seconds",
			Help: "Unix time of the last successful fetch per resource",
		}, []string{"resource"}),

		Subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "govdash_snapshot_subscribers",
			Help: "Current number of snapshot subscribers",
		}),
	}
}

// ObserveFetch records one resource fetch.
func (m *Metrics) ObserveFetch(resource string, ok bool, at time.Time) {
	if m == nil {
		return
	}
	if ok {
		m.Fetches.WithLabelValues(resource, "ok").Inc()
		m.LastSuccess.WithLabelValues(resource).Set(float64(at.Unix()))
		return
	}
	m.Fetches.WithLabelValues(resource, "failed").Inc()
}

// ObservePoll records the duration of a poll.
func (m *Metrics) ObservePoll(d time.Duration) {
	if m != nil {
		m.PollDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) SetSubscribers(n int) {
	if m != nil {
		m.Subscribers.Set(float64(n))
	}
}
