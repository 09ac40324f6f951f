// Package thumbnail implements the asynchronous thumbnail-generation
// pipeline.
//
// Uploads of image kind enqueue a small typed job (file id + owner id) on a
// buffered channel; a fixed-size worker pool consumes the channel and
// derives resized variants at three fixed widths. The pipeline tolerates
// at-least-once delivery: every derivation is a deterministic overwrite
// keyed by "<storageKey>_<width>", so processing a job twice leaves the
// content store in the same state as processing it once.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	// Register the raster decoders for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/content"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// Widths are the fixed target pixel widths derived for every image upload.
var Widths = []int{500, 250, 100}

// Fatal job errors. A job that hits one of these is Failed; the pipeline
// itself never retries (retry policy, if any, belongs to whatever feeds
// the queue).
var (
	// ErrMissingFileID means the job carried no file id.
	ErrMissingFileID = errors.New("missing fileId")

	// ErrMissingUserID means the job carried no owner id.
	ErrMissingUserID = errors.New("missing userId")

	// ErrFileNotFound means no record with that id is owned by that user.
	ErrFileNotFound = errors.New("file not found")
)

// Job references the file record a worker should derive thumbnails for.
// Jobs are transient: they exist only on the queue between enqueue and
// completion and carry no retry state.
type Job struct {
	FileID  metadata.FileID
	OwnerID metadata.UserID
}

// Config holds pipeline settings.
type Config struct {
	// Workers is the size of the worker pool.
	Workers int

	// QueueSize is the job channel buffer size.
	QueueSize int

	// Metrics receives pipeline observations. Nil disables collection.
	Metrics PipelineMetrics
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{Workers: 4, QueueSize: 64}
}

// Pipeline is the job queue plus worker pool.
type Pipeline struct {
	meta     metadata.MetadataStore
	contents content.ContentStore

	jobs    chan Job
	workers int
	metrics PipelineMetrics

	// mu orders Enqueue against Stop: senders hold the read side across
	// the channel send, Stop closes the channel under the write side, so
	// the channel can never close under a pending sender.
	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewPipeline creates a pipeline over the given stores. Call Start to spin
// up the workers.
func NewPipeline(meta metadata.MetadataStore, contents content.ContentStore, cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopPipelineMetrics{}
	}

	return &Pipeline{
		meta:     meta,
		contents: contents,
		jobs:     make(chan Job, cfg.QueueSize),
		workers:  cfg.Workers,
		metrics:  cfg.Metrics,
	}
}

// Start launches the worker pool. Workers run until Stop is called or ctx
// is cancelled.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("pipeline is already running")
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		workerID := i + 1
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx, workerID)
		}()
	}

	logger.Info("thumbnail pipeline started with %d workers", p.workers)
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish, up to the
// deadline of ctx. Once enqueued, a job runs to completion or terminal
// failure; there is no per-job cancellation.
func (p *Pipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("thumbnail pipeline stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("timeout waiting for thumbnail workers to stop")
		return ctx.Err()
	}
}

// Enqueue submits a job. It blocks only while the queue buffer is full and
// fails once the pipeline has been stopped. Safe to call concurrently with
// Stop: a concurrent Stop either rejects the job or waits for the send.
func (p *Pipeline) Enqueue(ctx context.Context, fileID metadata.FileID, owner metadata.UserID) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("pipeline is stopped")
	}

	select {
	case p.jobs <- Job{FileID: fileID, OwnerID: owner}:
		p.metrics.RecordQueueDepth(len(p.jobs))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is a worker's main loop.
func (p *Pipeline) run(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.metrics.RecordQueueDepth(len(p.jobs))

			start := time.Now()
			err := p.ProcessJob(ctx, job)
			p.metrics.ObserveJob(time.Since(start), err != nil)

			if err != nil {
				logger.Error("worker %d: job for file %q failed: %v", workerID, job.FileID, err)
			} else {
				logger.Debug("worker %d: completed thumbnails for file %q", workerID, job.FileID)
			}
		}
	}
}

// ProcessJob derives the three fixed-width variants for one job.
//
// A returned error is a fatal job error (malformed ids, unresolvable
// record). Per-width failures are not fatal: each width's derivation is
// independent, failures are logged and the remaining widths still run, and
// the job counts as completed once all three have been attempted. Nothing
// records which widths succeeded; a missing width is observed later as a
// NotFound at read time.
//
// Safe to call more than once for the same job: every write is an
// idempotent overwrite of a deterministic key.
func (p *Pipeline) ProcessJob(ctx context.Context, job Job) error {
	if job.FileID == "" {
		return ErrMissingFileID
	}
	if job.OwnerID == "" {
		return ErrMissingUserID
	}

	record, err := p.meta.GetFileByIDAndOwner(ctx, job.FileID, job.OwnerID)
	if err != nil {
		if metadata.IsNotFound(err) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to resolve file record: %w", err)
	}

	source, format, err := p.decodeSource(ctx, record)
	if err != nil {
		// Unreadable source bytes fail every width the same way a
		// per-width derivation failure would; the job itself is done.
		logger.Error("cannot decode source image for file %q: %v", record.ID, err)
		return nil
	}

	var wg sync.WaitGroup
	for _, width := range Widths {
		wg.Add(1)
		go func(width int) {
			defer wg.Done()
			if err := p.deriveWidth(ctx, record, source, format, width); err != nil {
				logger.Error("failed to derive width %d for file %q: %v", width, record.ID, err)
			}
		}(width)
	}
	wg.Wait()

	return nil
}

// decodeSource loads and decodes the original image bytes.
func (p *Pipeline) decodeSource(ctx context.Context, record *metadata.FileRecord) (image.Image, imaging.Format, error) {
	data, err := p.contents.ReadContent(ctx, record.StorageKey)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read source content: %w", err)
	}

	source, formatName, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		// Decoded fine but no matching encoder; fall back to PNG.
		format = imaging.PNG
	}
	return source, format, nil
}

// deriveWidth resizes the source to one target width (height follows the
// aspect ratio) and overwrites the derived key.
func (p *Pipeline) deriveWidth(ctx context.Context, record *metadata.FileRecord, source image.Image, format imaging.Format, width int) error {
	resized := imaging.Resize(source, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		return fmt.Errorf("failed to encode resized image: %w", err)
	}

	key := content.KeyForWidth(record.StorageKey, width)
	if err := p.contents.WriteContent(ctx, key, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write derived content: %w", err)
	}
	return nil
}
