// Package fs implements content.ContentStore on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmos91/dittodrive/pkg/content"
)

// FSContentStore stores each content key as a file under a base directory.
//
// Keys are UUIDs (optionally with a "_<width>" suffix), so they are always
// filesystem-safe and no encoding is needed.
//
// Thread Safety:
// Filesystem operations are thread-safe at the OS level; callers write
// disjoint keys, so no additional synchronization is required.
type FSContentStore struct {
	basePath string
}

// NewFSContentStore creates a filesystem content store rooted at basePath.
// The base directory is created if it doesn't exist.
func NewFSContentStore(ctx context.Context, basePath string) (*FSContentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSContentStore{basePath: basePath}, nil
}

// getFilePath returns the full path for a given content key.
func (s *FSContentStore) getFilePath(key string) string {
	return filepath.Join(s.basePath, key)
}

func (s *FSContentStore) WriteContent(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// The base directory may have been removed since construction;
	// recreate it rather than failing the upload.
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create base directory: %w", err)
	}

	if err := os.WriteFile(s.getFilePath(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

func (s *FSContentStore) ReadContent(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content %s: %w", key, content.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return data, nil
}

func (s *FSContentStore) ContentExists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(s.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat content: %w", err)
	}
	return true, nil
}

func (s *FSContentStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.getFilePath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

func (s *FSContentStore) ListKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list content directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

func (s *FSContentStore) Close() error {
	return nil
}
