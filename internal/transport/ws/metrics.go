package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks live map stream clients.
type Metrics struct {
	Connections prometheus.Gauge
	Pushes      prometheus.Counter
	Dropped     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Name: "govdash_map_stream_connections",
			Help: "Open map stream websocket connections",
		}),
		Pushes: f.NewCounter(prometheus.CounterOpts{
			Name: "govdash_map_stream_pushes_total",
			Help: "Map views queued to stream clients",
		}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "govdash_map_stream_dropped_total",
			Help: "Map views skipped because a client was too slow",
		}),
	}
}

func (m *Metrics) connected(delta float64) {
	if m != nil {
		m.Connections.Add(delta)
	}
}

func (m *Metrics) pushed(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.Pushes.Inc()
		return
	}
	m.Dropped.Inc()
}
