// Package gc provides garbage collection for orphaned content blobs.
//
// Uploads write content before committing metadata, so a crash or a failed
// metadata commit can leave blobs behind that no file record references.
// There is no delete operation on records, which means orphans accumulate
// only from these failure windows; the collector reclaims them.
//
// A blob is live when some record's storage key matches it, either exactly
// (the original bytes) or as one of the fixed-width thumbnail variants
// derived from it. Everything else in the content store is orphaned.
package gc

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/content"
	"github.com/marmos91/dittodrive/pkg/metadata"
	"github.com/marmos91/dittodrive/pkg/thumbnail"
)

// Collector performs periodic garbage collection on the content store.
//
// The collector runs in the background and periodically scans for orphaned
// blobs (content not referenced by any file record) and deletes them.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	metadataStore metadata.MetadataStore
	contentStore  content.ContentStore
	config        Config
	stopCh        chan struct{}
	doneCh        chan struct{}
}

// Config contains configuration for the garbage collector.
type Config struct {
	// Enabled controls whether garbage collection is active (default: false)
	Enabled bool

	// Interval is how often to run garbage collection (default: 24h)
	Interval time.Duration

	// BatchSize is how many orphaned blobs to delete between cancellation
	// checks (default: 1000)
	BatchSize int

	// DryRun mode logs what would be deleted without actually deleting
	// (default: false)
	DryRun bool
}

// NewCollector creates a new garbage collector.
//
// The collector will be initialized but not started. Call Start() to begin
// background garbage collection.
func NewCollector(metadataStore metadata.MetadataStore, contentStore content.ContentStore, config Config) *Collector {
	if config.Interval == 0 {
		config.Interval = 24 * time.Hour
	}
	if config.BatchSize == 0 {
		config.BatchSize = 1000
	}

	return &Collector{
		metadataStore: metadataStore,
		contentStore:  contentStore,
		config:        config,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins background garbage collection.
//
// This starts a goroutine that periodically runs garbage collection at the
// configured interval. The goroutine runs until Stop() is called.
func (c *Collector) Start() {
	if !c.config.Enabled {
		logger.Info("Garbage collection disabled")
		return
	}

	logger.Info("Starting garbage collector: interval=%s batch_size=%d dry_run=%v",
		c.config.Interval, c.config.BatchSize, c.config.DryRun)

	go c.worker()
}

// Stop stops the garbage collector and waits for it to finish any
// in-progress collection, up to the deadline of ctx.
func (c *Collector) Stop(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	logger.Info("Stopping garbage collector...")
	close(c.stopCh)

	select {
	case <-c.doneCh:
		logger.Info("Garbage collector stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("Garbage collector shutdown timeout")
		return ctx.Err()
	}
}

// RunNow triggers an immediate garbage collection run. It blocks until
// collection completes or ctx is cancelled.
func (c *Collector) RunNow(ctx context.Context) (*Stats, error) {
	return c.collect(ctx)
}

// worker is the background goroutine that runs periodic garbage collection.
func (c *Collector) worker() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			stats, err := c.collect(ctx)
			cancel()

			if err != nil {
				logger.Error("Garbage collection failed: %v", err)
			} else {
				logger.Info("Garbage collection completed: %s", stats.Summary())
			}

		case <-c.stopCh:
			return
		}
	}
}

// collect performs a single garbage collection run.
//
// The algorithm:
//  1. Collect the storage keys of every file record
//  2. Expand each into its live key set (original plus thumbnail widths)
//  3. List every blob key in the content store
//  4. Re-fetch the reference set and drop candidates it now covers
//  5. Delete blobs unreferenced by both snapshots
//
// Step 4 closes the upload race: content bytes land before the metadata
// record commits, so a blob listed in step 3 may belong to a record that
// commits moments later. A blob is deleted only when no record references
// it both before and after the listing.
func (c *Collector) collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	referenced, err := c.metadataStore.AllStorageKeys(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to collect referenced storage keys: %w", err)
	}
	stats.ReferencedCount = uint64(len(referenced))

	// Each record key covers the original blob and its derived widths. A
	// width that was never generated simply never matches a stored blob.
	live := make(map[string]struct{}, len(referenced)*(1+len(thumbnail.Widths)))
	for _, key := range referenced {
		live[key] = struct{}{}
		for _, width := range thumbnail.Widths {
			live[content.KeyForWidth(key, width)] = struct{}{}
		}
	}

	existing, err := c.contentStore.ListKeys(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list content keys: %w", err)
	}
	stats.ExistingCount = uint64(len(existing))

	orphaned := make([]string, 0)
	for _, key := range existing {
		if _, isLive := live[key]; !isLive {
			orphaned = append(orphaned, key)
		}
	}

	if len(orphaned) > 0 {
		recheck, err := c.metadataStore.AllStorageKeys(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to re-check referenced storage keys: %w", err)
		}
		for _, key := range recheck {
			live[key] = struct{}{}
			for _, width := range thumbnail.Widths {
				live[content.KeyForWidth(key, width)] = struct{}{}
			}
		}

		confirmed := orphaned[:0]
		for _, key := range orphaned {
			if _, isLive := live[key]; !isLive {
				confirmed = append(confirmed, key)
			}
		}
		if rescued := len(orphaned) - len(confirmed); rescued > 0 {
			logger.Debug("GC: %d candidate blobs gained records during the scan", rescued)
		}
		orphaned = confirmed
	}
	stats.OrphanedCount = uint64(len(orphaned))

	if len(orphaned) == 0 {
		stats.EndTime = time.Now()
		return stats, nil
	}

	logger.Info("GC: found %d orphaned blobs (%d referenced, %d existing)",
		stats.OrphanedCount, stats.ReferencedCount, stats.ExistingCount)

	if c.config.DryRun {
		for i, key := range orphaned {
			if i >= 10 {
				logger.Info("GC: dry run, ... and %d more", len(orphaned)-10)
				break
			}
			logger.Info("GC: dry run, would delete %s", key)
		}
		stats.EndTime = time.Now()
		return stats, nil
	}

	for i, key := range orphaned {
		if i%c.config.BatchSize == 0 {
			if err := ctx.Err(); err != nil {
				stats.EndTime = time.Now()
				return stats, err
			}
		}

		if err := c.contentStore.Delete(ctx, key); err != nil {
			logger.Debug("GC: failed to delete %s: %v", key, err)
			stats.FailedCount++
			continue
		}
		stats.DeletedCount++
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// Stats contains statistics from a garbage collection run.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	ReferencedCount uint64 // storage keys referenced by file records
	ExistingCount   uint64 // blob keys present in the content store
	OrphanedCount   uint64 // blobs not covered by any live key
	DeletedCount    uint64
	FailedCount     uint64
}

// Duration returns the total collection duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the collection.
func (s *Stats) Summary() string {
	return fmt.Sprintf("referenced=%d existing=%d orphaned=%d deleted=%d failed=%d duration=%s",
		s.ReferencedCount, s.ExistingCount, s.OrphanedCount,
		s.DeletedCount, s.FailedCount, s.Duration())
}
