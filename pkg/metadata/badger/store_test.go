package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/marmos91/dittodrive/pkg/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens an in-memory BadgerDB store and registers its cleanup.
func newTestStore(t *testing.T) *BadgerMetadataStore {
	t.Helper()

	store, err := NewBadgerMetadataStore(context.Background(), BadgerMetadataStoreConfig{InMemory: true})
	require.NoError(t, err, "Failed to open in-memory BadgerDB store")

	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// TestBadgerUsers verifies the user lifecycle against BadgerDB: creation,
// the unique-email index, and the credential lookup.
func TestBadgerUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "bob@dylan.com", "hash1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	_, err = store.CreateUser(ctx, "bob@dylan.com", "hash2")
	assert.True(t, metadata.IsAlreadyExists(err), "duplicate email must fail with AlreadyExists, got %v", err)

	fetched, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@dylan.com", fetched.Email)

	byCreds, err := store.GetUserByCredentials(ctx, "bob@dylan.com", "hash1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byCreds.ID)

	_, err = store.GetUserByCredentials(ctx, "bob@dylan.com", "wrong")
	assert.True(t, metadata.IsNotFound(err), "wrong password must look like NotFound, got %v", err)

	count, err := store.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

// TestBadgerFileIDs verifies that the sequence produces ids whose
// lexicographic order matches creation order.
func TestBadgerFileIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var previous metadata.FileID
	for i := 0; i < 10; i++ {
		record, err := store.CreateFile(ctx, &metadata.FileRecord{
			OwnerID:  "user-1",
			Name:     fmt.Sprintf("file-%d", i),
			Kind:     metadata.KindFile,
			ParentID: metadata.RootFolderID,
		})
		require.NoError(t, err)
		require.Greater(t, string(record.ID), string(previous), "ids must be lexicographically increasing")
		previous = record.ID
	}
}

// TestBadgerListing verifies the reverse index iteration: descending order,
// owner scoping, parent filtering and offset/limit windows.
func TestBadgerListing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	folder, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-1", Name: "docs", Kind: metadata.KindFolder, ParentID: metadata.RootFolderID,
	})
	require.NoError(t, err)

	var childIDs []metadata.FileID
	for i := 0; i < 7; i++ {
		record, err := store.CreateFile(ctx, &metadata.FileRecord{
			OwnerID: "user-1", Name: fmt.Sprintf("c%d", i), Kind: metadata.KindFile, ParentID: folder.ID,
		})
		require.NoError(t, err)
		childIDs = append(childIDs, record.ID)
	}
	// Records of another owner under the same parent id must not leak.
	_, err = store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-2", Name: "other", Kind: metadata.KindFile, ParentID: folder.ID,
	})
	require.NoError(t, err)

	page, err := store.ListByOwnerAndParent(ctx, "user-1", folder.ID, 0, 5)
	require.NoError(t, err)
	require.Len(t, page, 5)
	assert.Equal(t, childIDs[6], page[0].ID, "newest child first")
	for i := 1; i < len(page); i++ {
		assert.Greater(t, string(page[i-1].ID), string(page[i].ID))
	}

	rest, err := store.ListByOwnerAndParent(ctx, "user-1", folder.ID, 5, 5)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, childIDs[1], rest[0].ID)
	assert.Equal(t, childIDs[0], rest[1].ID)

	// Root spans all of the owner's records regardless of parent.
	all, err := store.ListByOwnerAndParent(ctx, "user-1", metadata.RootFolderID, 0, 20)
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

// TestBadgerSetPublic verifies the atomic toggle and owner scoping.
func TestBadgerSetPublic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-1", Name: "file", Kind: metadata.KindFile, ParentID: metadata.RootFolderID,
	})
	require.NoError(t, err)

	updated, err := store.SetPublic(ctx, record.ID, "user-1", true)
	require.NoError(t, err)
	assert.True(t, updated.Public)

	fetched, err := store.GetFileByID(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Public)

	_, err = store.SetPublic(ctx, record.ID, "user-2", false)
	assert.True(t, metadata.IsNotFound(err), "non-owner toggle must fail with NotFound, got %v", err)
}

// TestBadgerAllStorageKeys verifies the GC scan skips folders.
func TestBadgerAllStorageKeys(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-1", Name: "docs", Kind: metadata.KindFolder, ParentID: metadata.RootFolderID,
	})
	require.NoError(t, err)
	_, err = store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-1", Name: "a", Kind: metadata.KindImage, ParentID: metadata.RootFolderID, StorageKey: "key-a",
	})
	require.NoError(t, err)

	keys, err := store.AllStorageKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"key-a"}, keys)
}
