package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/auth"
	"github.com/marmos91/dittodrive/pkg/cache"
	"github.com/marmos91/dittodrive/pkg/content"
	"github.com/marmos91/dittodrive/pkg/files"
	"github.com/marmos91/dittodrive/pkg/metadata"
	"github.com/marmos91/dittodrive/pkg/metrics"
	"github.com/marmos91/dittodrive/pkg/thumbnail"
)

// Backends holds every initialized backend and service of a DittoDrive
// server. It is the single place that owns store lifecycles: Close tears
// everything down in reverse initialization order.
type Backends struct {
	Metadata metadata.MetadataStore
	Cache    cache.Cache
	Content  content.ContentStore

	Pipeline *thumbnail.Pipeline
	Auth     *auth.Service
	Files    *files.Service
}

// InitializeBackends creates all stores and services from the provided
// configuration.
//
// This function orchestrates the complete initialization process:
//  1. Creates the metadata store from cfg.Metadata
//  2. Creates the session cache from cfg.Cache
//  3. Creates the content store from cfg.Content
//  4. Creates the thumbnail pipeline and wires it into the files service
//
// The pipeline is constructed but not started; the caller starts it once a
// lifecycle context exists.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: Complete configuration loaded from config file
//
// Returns:
//   - *Backends: Fully initialized backends
//   - error: If any store creation fails
func InitializeBackends(ctx context.Context, cfg *Config) (*Backends, error) {
	logger.Debug("Initializing backends from configuration")

	metaStore, err := CreateMetadataStore(ctx, &cfg.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata store: %w", err)
	}
	logger.Debug("Metadata store initialized (type: %s)", cfg.Metadata.Type)

	sessionCache, err := CreateCache(ctx, &cfg.Cache)
	if err != nil {
		_ = metaStore.Close()
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	logger.Debug("Session cache initialized (type: %s)", cfg.Cache.Type)

	contentStore, err := CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		_ = sessionCache.Close()
		_ = metaStore.Close()
		return nil, fmt.Errorf("failed to create content store: %w", err)
	}
	logger.Debug("Content store initialized (type: %s)", cfg.Content.Type)

	pipeline := thumbnail.NewPipeline(metaStore, contentStore, thumbnail.Config{
		Workers:   cfg.Thumbnail.Workers,
		QueueSize: cfg.Thumbnail.QueueSize,
		Metrics:   metrics.NewPipelineMetrics(),
	})

	return &Backends{
		Metadata: metaStore,
		Cache:    sessionCache,
		Content:  contentStore,
		Pipeline: pipeline,
		Auth:     auth.NewService(metaStore, sessionCache),
		Files:    files.NewService(metaStore, contentStore, pipeline),
	}, nil
}

// Close releases all backend resources in reverse initialization order.
// Errors are logged rather than returned; shutdown keeps going so that one
// failing store cannot leak the others.
func (b *Backends) Close() {
	if err := b.Content.Close(); err != nil {
		logger.Warn("Failed to close content store: %v", err)
	}
	if err := b.Cache.Close(); err != nil {
		logger.Warn("Failed to close session cache: %v", err)
	}
	if err := b.Metadata.Close(); err != nil {
		logger.Warn("Failed to close metadata store: %v", err)
	}
}
