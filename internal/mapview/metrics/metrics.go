package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the map render pass.
type Metrics struct {
	Resolutions     *prometheus.CounterVec
	RenderDuration  prometheus.Histogram
	AnalyticsServed *prometheus.CounterVec
}

// New creates a new Metrics instance with all map view metrics registered.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_region_resolutions_total",
			Help: "Region name resolutions by lookup strategy and alias use",
		}, []string{"strategy", "aliased"}),

		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "govdash_map_render_duration_seconds",
			Help:    "Duration of one map render pass",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),

		AnalyticsServed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_analytics_served_total",
			Help: "Analytics responses by source",
		}, []string{"source"}), // source: "live", "cached", "empty"
	}
}

// ObserveResolution counts one resolved feature.
func (m *Metrics) ObserveResolution(strategy string, aliased bool) {
	if m != nil {
		m.Resolutions.WithLabelValues(strategy, strconv.FormatBool(aliased)).Inc()
	}
}

// ObserveRender records the duration of a render pass.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRender(start time.Time) {
	if m != nil {
		m.RenderDuration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementAnalytics(source string) {
	if m != nil {
		m.AnalyticsServed.WithLabelValues(source).Inc()
	}
}
