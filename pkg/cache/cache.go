// Package cache defines the key-value cache interface used for session
// storage.
//
// The cache is an external collaborator with exactly the semantics the
// session layer needs: get, set with expiry, delete. The Redis
// implementation lives in the redis subpackage; the memory subpackage
// provides an in-process implementation with TTL for tests and local
// development.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound indicates the key is absent or its entry has expired.
//
// Callers treat absence and expiry identically: an expired session token is
// simply not there anymore.
var ErrKeyNotFound = errors.New("key not found")

// Cache is a key-value store with per-key expiry.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Cache interface {
	// Get returns the value stored under key, or ErrKeyNotFound if the
	// key is absent or expired. Reading does not refresh the expiry.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given time-to-live. A zero ttl
	// stores the key without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the cache's resources.
	Close() error
}
