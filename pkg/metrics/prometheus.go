package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	windowsTotal prometheus.Counter
	rowsTotal    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		windowsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "topopull_windows_processed_total",
				Help: "Total number of point cloud windows processed",
			},
		),
		rowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topopull_feature_rows_total",
				Help: "Total number of feature rows delivered per sink",
			},
			[]string{"sink"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "topopull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "topopull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordWindows counts processed windows.
func (r *Recorder) RecordWindows(n int) {
	r.windowsTotal.Add(float64(n))
}

// RecordRows counts feature rows delivered to a sink.
func (r *Recorder) RecordRows(sink string, n int) {
	r.rowsTotal.WithLabelValues(sink).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
