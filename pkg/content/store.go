// Package content defines the content store abstraction for raw file bytes.
//
// The content store manages only the bytes. It does NOT manage:
//   - File metadata (name, kind, owner) → handled by metadata.MetadataStore
//   - The folder hierarchy → handled by metadata.MetadataStore
//   - Access control → handled by the files service
//
// Keys are opaque strings generated by the files service (random UUIDs).
// Derived thumbnail variants share the original's key with a width suffix
// ("<key>_<width>"), so concurrent writers always touch disjoint keys and no
// locking is needed. Writes are whole-object overwrites: writing the same
// bytes twice leaves the store in the same state, which is what makes
// at-least-once thumbnail jobs safe to repeat.
//
// Implementations: fs (local filesystem), s3 (Amazon S3 or compatible),
// memory (tests).
package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrContentNotFound indicates the requested key has no stored bytes.
//
// This covers both a genuinely absent file and a thumbnail width that was
// never derived; readers cannot and should not tell them apart.
var ErrContentNotFound = errors.New("content not found")

// ContentStore persists raw bytes under opaque keys.
//
// Thread Safety:
// Implementations must be safe for concurrent use. Concurrent writes to the
// same key are last-write-wins; callers guarantee disjoint keys via the
// generation scheme.
type ContentStore interface {
	// WriteContent stores data under key, replacing any previous bytes.
	// The containing storage area is created if absent.
	WriteContent(ctx context.Context, key string, data []byte) error

	// ReadContent returns the bytes stored under key, or
	// ErrContentNotFound.
	ReadContent(ctx context.Context, key string) ([]byte, error)

	// ContentExists reports whether key has stored bytes. Absence is not
	// an error.
	ContentExists(ctx context.Context, key string) (bool, error)

	// Delete removes the bytes under key. Idempotent: deleting an absent
	// key succeeds.
	Delete(ctx context.Context, key string) error

	// ListKeys returns every stored key. Used by the garbage collector to
	// find blobs no metadata record references.
	ListKeys(ctx context.Context) ([]string, error)

	// Close releases the store's resources.
	Close() error
}

// NewStorageKey generates a fresh unique storage key.
func NewStorageKey() string {
	return uuid.NewString()
}

// KeyForWidth returns the storage key of the derived variant of key resized
// to the given pixel width.
func KeyForWidth(key string, width int) string {
	return fmt.Sprintf("%s_%d", key, width)
}
