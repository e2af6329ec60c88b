package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for dataset uploads.
type Metrics struct {
	Uploads        *prometheus.CounterVec
	UploadDuration prometheus.Histogram
	UploadBytes    prometheus.Counter
	InFlight       prometheus.Gauge
}

// New creates a new Metrics instance with all upload metrics registered.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "govdash_dataset_uploads_total",
			Help: "Dataset uploads by dataset type and outcome",
		}, []string{"type", "outcome"}),
		UploadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "govdash_dataset_upload_duration_seconds",
			Help:    "Backend ingestion time per upload",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		UploadBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "govdash_dataset_upload_bytes_total",
			Help: "Bytes sent to the backend for ingestion",
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "govdash_dataset_uploads_in_flight",
			Help: "Uploads currently awaiting the backend",
		}),
	}
}

func (m *Metrics) UploadStarted(size int) {
	if m == nil {
		return
	}
	m.InFlight.Inc()
	m.UploadBytes.Add(float64(size))
}

// UploadFinished records the outcome of an upload.
// Call with the time the upload started.
func (m *Metrics) UploadFinished(datasetType, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.Uploads.WithLabelValues(datasetType, outcome).Inc()
	m.UploadDuration.Observe(time.Since(start).Seconds())
}
