package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marmos91/dittodrive/pkg/cache"
)

// TestSetGet verifies basic storage and retrieval.
func TestSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "auth_token", "user-1", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := c.Get(ctx, "auth_token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "user-1" {
		t.Errorf("Expected value 'user-1', got %q", value)
	}

	_, err = c.Get(ctx, "missing")
	if !errors.Is(err, cache.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound for a missing key, got %v", err)
	}
}

// TestExpiry verifies lazy expiry using a fake clock instead of sleeping.
func TestExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })

	if err := c.Set(ctx, "auth_token", "user-1", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Just before the deadline the entry is still readable.
	now = now.Add(time.Hour - time.Second)
	if _, err := c.Get(ctx, "auth_token"); err != nil {
		t.Fatalf("Expected entry to be alive before expiry, got %v", err)
	}

	// At the deadline it is gone. Reading does not refresh the expiry, so
	// the earlier Get must not have extended it.
	now = now.Add(time.Second)
	_, err := c.Get(ctx, "auth_token")
	if !errors.Is(err, cache.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound after expiry, got %v", err)
	}
}

// TestZeroTTL verifies that a zero ttl stores the key without expiry.
func TestZeroTTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })

	if err := c.Set(ctx, "key", "value", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(1000 * time.Hour)
	if _, err := c.Get(ctx, "key"); err != nil {
		t.Errorf("Expected an unexpiring entry to survive, got %v", err)
	}
}

// TestDelete verifies removal and that deleting an absent key is not an
// error.
func TestDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", "value", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, cache.ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound after delete, got %v", err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Expected deleting an absent key to succeed, got %v", err)
	}
}

// TestOverwrite verifies that setting an existing key replaces both the
// value and the expiry.
func TestOverwrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Now()
	c.SetClock(func() time.Time { return now })

	if err := c.Set(ctx, "key", "old", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, "key", "new", time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	now = now.Add(30 * time.Minute)
	value, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "new" {
		t.Errorf("Expected overwritten value 'new', got %q", value)
	}
}
