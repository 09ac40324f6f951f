// Package testing provides a reusable conformance suite for ContentStore
// implementations. Each backend runs the same suite against its own
// constructor, so every store is held to the identical contract.
package testing

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/marmos91/dittodrive/pkg/content"
)

// StoreTestSuite runs the ContentStore contract tests against the store
// produced by NewStore. NewStore is called once per subtest and must return
// an empty store.
type StoreTestSuite struct {
	NewStore func() content.ContentStore
}

// Run executes the complete suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("WriteRead", suite.testWriteRead)
	t.Run("ReadMissing", suite.testReadMissing)
	t.Run("Overwrite", suite.testOverwrite)
	t.Run("Exists", suite.testExists)
	t.Run("Delete", suite.testDelete)
	t.Run("ListKeys", suite.testListKeys)
	t.Run("WidthKeysAreDisjoint", suite.testWidthKeysAreDisjoint)
}

func (suite *StoreTestSuite) testWriteRead(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()

	payload := []byte("hello content")
	if err := store.WriteContent(ctx, "key-1", payload); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}

	data, err := store.ReadContent(ctx, "key-1")
	if err != nil {
		t.Fatalf("ReadContent failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Expected %q, got %q", payload, data)
	}
}

func (suite *StoreTestSuite) testReadMissing(t *testing.T) {
	store := suite.NewStore()

	_, err := store.ReadContent(context.Background(), "missing")
	if !errors.Is(err, content.ErrContentNotFound) {
		t.Errorf("Expected ErrContentNotFound, got %v", err)
	}
}

func (suite *StoreTestSuite) testOverwrite(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()

	if err := store.WriteContent(ctx, "key-1", []byte("old")); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}
	if err := store.WriteContent(ctx, "key-1", []byte("new")); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}

	data, err := store.ReadContent(ctx, "key-1")
	if err != nil {
		t.Fatalf("ReadContent failed: %v", err)
	}
	if string(data) != "new" {
		t.Errorf("Expected overwritten bytes 'new', got %q", data)
	}
}

func (suite *StoreTestSuite) testExists(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()

	exists, err := store.ContentExists(ctx, "key-1")
	if err != nil {
		t.Fatalf("ContentExists failed: %v", err)
	}
	if exists {
		t.Error("Expected key-1 to be absent")
	}

	if err := store.WriteContent(ctx, "key-1", []byte("data")); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}

	exists, err = store.ContentExists(ctx, "key-1")
	if err != nil {
		t.Fatalf("ContentExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected key-1 to exist after write")
	}
}

func (suite *StoreTestSuite) testDelete(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()

	if err := store.WriteContent(ctx, "key-1", []byte("data")); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}
	if err := store.Delete(ctx, "key-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.ReadContent(ctx, "key-1"); !errors.Is(err, content.ErrContentNotFound) {
		t.Errorf("Expected ErrContentNotFound after delete, got %v", err)
	}

	// Idempotent: deleting an absent key succeeds.
	if err := store.Delete(ctx, "key-1"); err != nil {
		t.Errorf("Expected deleting an absent key to succeed, got %v", err)
	}
}

func (suite *StoreTestSuite) testListKeys(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()

	keys, err := store.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("Expected an empty store to list no keys, got %v", keys)
	}

	want := []string{"key-a", "key-b", "key-c"}
	for _, key := range want {
		if err := store.WriteContent(ctx, key, []byte(key)); err != nil {
			t.Fatalf("WriteContent failed: %v", err)
		}
	}

	keys, err = store.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != len(want) {
		t.Fatalf("Expected %d keys, got %d", len(want), len(keys))
	}
	for i, key := range want {
		if keys[i] != key {
			t.Errorf("Expected key %q at position %d, got %q", key, i, keys[i])
		}
	}
}

func (suite *StoreTestSuite) testWidthKeysAreDisjoint(t *testing.T) {
	store := suite.NewStore()
	ctx := context.Background()

	key := content.NewStorageKey()
	if err := store.WriteContent(ctx, key, []byte("original")); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}
	if err := store.WriteContent(ctx, content.KeyForWidth(key, 500), []byte("thumb")); err != nil {
		t.Fatalf("WriteContent failed: %v", err)
	}

	original, err := store.ReadContent(ctx, key)
	if err != nil {
		t.Fatalf("ReadContent failed: %v", err)
	}
	if string(original) != "original" {
		t.Errorf("Derived write clobbered the original: got %q", original)
	}

	thumb, err := store.ReadContent(ctx, content.KeyForWidth(key, 500))
	if err != nil {
		t.Fatalf("ReadContent failed: %v", err)
	}
	if string(thumb) != "thumb" {
		t.Errorf("Expected derived bytes 'thumb', got %q", thumb)
	}
}
