package metrics

import (
	"strconv"
	"time"

	"github.com/marmos91/dittodrive/pkg/httpd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// requestMetrics is the Prometheus implementation of the
// httpd.RequestMetrics interface.
//
// It collects per-request counts labeled by method and status class, plus a
// latency histogram over all endpoints.
type requestMetrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewRequestMetrics creates a new Prometheus-backed RequestMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), which
// causes the HTTP server to use its built-in no-op implementation.
func NewRequestMetrics() httpd.RequestMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &requestMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittodrive_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"method", "status"},
		),
		duration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "dittodrive_http_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.005, // 5ms
					0.01,  // 10ms
					0.05,  // 50ms
					0.1,   // 100ms
					0.5,   // 500ms
					1,     // 1s
					5,     // 5s
				},
			},
		),
	}
}

// ObserveRequest implements httpd.RequestMetrics.ObserveRequest
func (m *requestMetrics) ObserveRequest(method string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.duration.Observe(duration.Seconds())
}
