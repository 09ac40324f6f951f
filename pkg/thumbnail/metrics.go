package thumbnail

import "time"

// PipelineMetrics collects observations from the worker pool.
//
// Implementations must be safe for concurrent use; workers call ObserveJob
// concurrently. A nil PipelineMetrics in Config selects a no-op
// implementation.
type PipelineMetrics interface {
	// ObserveJob records one processed job. failed is true when the job hit
	// a fatal error.
	ObserveJob(duration time.Duration, failed bool)

	// RecordQueueDepth records the current number of queued jobs.
	RecordQueueDepth(depth int)
}

// noopPipelineMetrics discards all observations.
type noopPipelineMetrics struct{}

func (noopPipelineMetrics) ObserveJob(duration time.Duration, failed bool) {}
func (noopPipelineMetrics) RecordQueueDepth(depth int)                     {}
