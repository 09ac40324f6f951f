package metrics

import (
	"time"

	"github.com/marmos91/dittodrive/pkg/thumbnail"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pipelineMetrics is the Prometheus implementation of the
// thumbnail.PipelineMetrics interface.
//
// It collects metrics about the thumbnail worker pool:
//   - Processed job counts by outcome
//   - Job processing latencies
//   - Current queue depth
type pipelineMetrics struct {
	jobs       *prometheus.CounterVec
	duration   prometheus.Histogram
	queueDepth prometheus.Gauge
}

// NewPipelineMetrics creates a new Prometheus-backed PipelineMetrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the pipeline to use its built-in no-op implementation.
func NewPipelineMetrics() thumbnail.PipelineMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &pipelineMetrics{
		jobs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittodrive_thumbnail_jobs_total",
				Help: "Total number of thumbnail jobs processed",
			},
			[]string{"status"},
		),
		duration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "dittodrive_thumbnail_job_duration_seconds",
				Help: "Duration of thumbnail job processing in seconds",
				Buckets: []float64{
					0.01, // 10ms
					0.05, // 50ms
					0.1,  // 100ms
					0.5,  // 500ms
					1,    // 1s
					5,    // 5s
					30,   // 30s
				},
			},
		),
		queueDepth: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "dittodrive_thumbnail_queue_depth",
				Help: "Current number of queued thumbnail jobs",
			},
		),
	}
}

// ObserveJob implements thumbnail.PipelineMetrics.ObserveJob
func (m *pipelineMetrics) ObserveJob(duration time.Duration, failed bool) {
	status := "success"
	if failed {
		status = "failure"
	}
	m.jobs.WithLabelValues(status).Inc()
	m.duration.Observe(duration.Seconds())
}

// RecordQueueDepth implements thumbnail.PipelineMetrics.RecordQueueDepth
func (m *pipelineMetrics) RecordQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}
