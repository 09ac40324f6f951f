package httpd

import "time"

// RequestMetrics collects per-request observations from the HTTP server.
//
// Implementations must be safe for concurrent use. A nil RequestMetrics
// passed to New causes the server to use a no-op implementation, so callers
// can disable metrics collection entirely without conditional wiring.
type RequestMetrics interface {
	// ObserveRequest records one completed request.
	ObserveRequest(method string, status int, duration time.Duration)
}

// noopRequestMetrics discards all observations.
type noopRequestMetrics struct{}

func (noopRequestMetrics) ObserveRequest(method string, status int, duration time.Duration) {}
