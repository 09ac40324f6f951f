package config

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/cache"
	cacheMemory "github.com/marmos91/dittodrive/pkg/cache/memory"
	cacheRedis "github.com/marmos91/dittodrive/pkg/cache/redis"
	"github.com/marmos91/dittodrive/pkg/content"
	contentFs "github.com/marmos91/dittodrive/pkg/content/fs"
	contentMemory "github.com/marmos91/dittodrive/pkg/content/memory"
	contentS3 "github.com/marmos91/dittodrive/pkg/content/s3"
	"github.com/marmos91/dittodrive/pkg/metadata"
	metaBadger "github.com/marmos91/dittodrive/pkg/metadata/badger"
	metaMemory "github.com/marmos91/dittodrive/pkg/metadata/memory"
	"github.com/mitchellh/mapstructure"
)

// CreateMetadataStore creates a metadata store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration from
// the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/metadata/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/metadata/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Metadata store configuration
//
// Returns:
//   - metadata.MetadataStore: Initialized metadata store
//   - error: Configuration or initialization error
func CreateMetadataStore(ctx context.Context, cfg *MetadataConfig) (metadata.MetadataStore, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return metaMemory.NewMemoryMetadataStore(), nil
	case "badger":
		return createBadgerMetadataStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown metadata store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerMetadataStore creates a BadgerDB-based persistent metadata store.
func createBadgerMetadataStore(ctx context.Context, options map[string]any) (metadata.MetadataStore, error) {
	// Decode store-specific options
	type BadgerMetadataStoreOptions struct {
		DBPath   string `mapstructure:"db_path"`
		InMemory bool   `mapstructure:"in_memory"`
	}

	var storeOpts BadgerMetadataStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger metadata store options: %w", err)
	}

	// Validate required fields
	if storeOpts.DBPath == "" && !storeOpts.InMemory {
		return nil, fmt.Errorf("badger metadata store: db_path is required")
	}

	store, err := metaBadger.NewBadgerMetadataStore(ctx, metaBadger.BadgerMetadataStoreConfig{
		DBPath:   storeOpts.DBPath,
		InMemory: storeOpts.InMemory,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger metadata store: %w", err)
	}

	return store, nil
}

// CreateCache creates a session cache based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/cache/memory (in-process, ephemeral)
//   - "redis": Uses pkg/cache/redis (shared Redis instance)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Cache configuration
//
// Returns:
//   - cache.Cache: Initialized cache
//   - error: Configuration or initialization error
func CreateCache(ctx context.Context, cfg *CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return cacheMemory.NewMemoryCache(), nil
	case "redis":
		return createRedisCache(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown cache type: %q (supported: memory, redis)", cfg.Type)
	}
}

// createRedisCache creates a Redis-backed session cache.
func createRedisCache(ctx context.Context, options map[string]any) (cache.Cache, error) {
	// Decode cache-specific options
	type RedisCacheOptions struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	var cacheOpts RedisCacheOptions
	if err := mapstructure.Decode(options, &cacheOpts); err != nil {
		return nil, fmt.Errorf("failed to decode redis cache options: %w", err)
	}

	// Validate required fields
	if cacheOpts.Addr == "" {
		return nil, fmt.Errorf("redis cache: addr is required")
	}

	redisCache, err := cacheRedis.NewRedisCache(ctx, cacheRedis.Config{
		Addr:     cacheOpts.Addr,
		Password: cacheOpts.Password,
		DB:       cacheOpts.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis cache: %w", err)
	}

	logger.Info("Redis session cache initialized: addr=%s, db=%d", cacheOpts.Addr, cacheOpts.DB)

	return redisCache, nil
}

// CreateContentStore creates a content store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration from
// the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "filesystem": Uses pkg/content/fs (local filesystem storage)
//   - "memory": Uses pkg/content/memory (in-memory storage, ephemeral)
//   - "s3": Uses pkg/content/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Content store configuration
//
// Returns:
//   - content.ContentStore: Initialized content store
//   - error: Configuration or initialization error
func CreateContentStore(ctx context.Context, cfg *ContentConfig) (content.ContentStore, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemContentStore(ctx, cfg.Filesystem)
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return contentMemory.NewMemoryContentStore(), nil
	case "s3":
		return createS3ContentStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown content store type: %q", cfg.Type)
	}
}

// createFilesystemContentStore creates a filesystem-based content store.
func createFilesystemContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	// Decode store-specific options
	type FilesystemContentStoreOptions struct {
		Path string `mapstructure:"path"`
	}

	var storeOpts FilesystemContentStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem content store options: %w", err)
	}

	// Validate required fields
	if storeOpts.Path == "" {
		return nil, fmt.Errorf("filesystem content store: path is required")
	}

	store, err := contentFs.NewFSContentStore(ctx, storeOpts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem content store: %w", err)
	}

	return store, nil
}

// createS3ContentStore creates an S3-based content store.
func createS3ContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	// Decode store-specific options
	type S3ContentStoreOptions struct {
		Bucket          string `mapstructure:"bucket"`
		Region          string `mapstructure:"region"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		UsePathStyle    bool   `mapstructure:"use_path_style"`
	}

	var storeOpts S3ContentStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 content store options: %w", err)
	}

	// Validate required fields
	if storeOpts.Bucket == "" {
		return nil, fmt.Errorf("S3 content store: bucket is required")
	}
	if storeOpts.Region == "" {
		return nil, fmt.Errorf("S3 content store: region is required")
	}

	store, err := contentS3.NewS3ContentStore(ctx, contentS3.Config{
		Bucket:          storeOpts.Bucket,
		Region:          storeOpts.Region,
		KeyPrefix:       storeOpts.KeyPrefix,
		Endpoint:        storeOpts.Endpoint,
		AccessKeyID:     storeOpts.AccessKeyID,
		SecretAccessKey: storeOpts.SecretAccessKey,
		UsePathStyle:    storeOpts.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content store: %w", err)
	}

	logger.Info("S3 content store initialized: bucket=%s, region=%s, prefix=%s",
		storeOpts.Bucket, storeOpts.Region, storeOpts.KeyPrefix)

	return store, nil
}
