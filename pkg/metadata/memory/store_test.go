package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/marmos91/dittodrive/pkg/metadata"
)

// TestCreateUser verifies user creation and the unique-email constraint.
func TestCreateUser(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "bob@dylan.com", "hash1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected a generated user id")
	}
	if user.Email != "bob@dylan.com" {
		t.Errorf("Expected email 'bob@dylan.com', got %q", user.Email)
	}

	_, err = store.CreateUser(ctx, "bob@dylan.com", "hash2")
	if !metadata.IsAlreadyExists(err) {
		t.Errorf("Expected AlreadyExists for duplicate email, got %v", err)
	}
}

// TestGetUserByCredentials verifies that the credential lookup never
// distinguishes an unknown email from a wrong password.
func TestGetUserByCredentials(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "bob@dylan.com", "hash1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := store.GetUserByCredentials(ctx, "bob@dylan.com", "hash1")
	if err != nil {
		t.Fatalf("GetUserByCredentials failed: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("Expected user id %q, got %q", created.ID, user.ID)
	}

	_, err = store.GetUserByCredentials(ctx, "bob@dylan.com", "wrong")
	if !metadata.IsNotFound(err) {
		t.Errorf("Expected NotFound for wrong password, got %v", err)
	}

	_, err = store.GetUserByCredentials(ctx, "nobody@dylan.com", "hash1")
	if !metadata.IsNotFound(err) {
		t.Errorf("Expected NotFound for unknown email, got %v", err)
	}
}

// TestCreateFile_IDOrdering verifies that generated ids are lexicographically
// increasing in creation order, which listings depend on.
func TestCreateFile_IDOrdering(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	var previous metadata.FileID
	for i := 0; i < 25; i++ {
		record, err := store.CreateFile(ctx, &metadata.FileRecord{
			OwnerID:  "user-1",
			Name:     fmt.Sprintf("file-%d", i),
			Kind:     metadata.KindFile,
			ParentID: metadata.RootFolderID,
		})
		if err != nil {
			t.Fatalf("CreateFile failed: %v", err)
		}
		if record.ID <= previous {
			t.Fatalf("Expected id %q > previous %q", record.ID, previous)
		}
		if record.ID == metadata.RootFolderID {
			t.Fatal("Generated id collides with the root sentinel")
		}
		previous = record.ID
	}
}

// TestCreateFile_IgnoresCallerID verifies that the caller-provided ID field
// is replaced by a generated one.
func TestCreateFile_IgnoresCallerID(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	record, err := store.CreateFile(ctx, &metadata.FileRecord{
		ID:       "bogus",
		OwnerID:  "user-1",
		Name:     "file",
		Kind:     metadata.KindFile,
		ParentID: metadata.RootFolderID,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if record.ID == "bogus" {
		t.Error("Expected the caller-provided id to be ignored")
	}
}

// TestGetFileByIDAndOwner verifies owner scoping on point lookups.
func TestGetFileByIDAndOwner(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	record, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID:  "user-1",
		Name:     "file",
		Kind:     metadata.KindFile,
		ParentID: metadata.RootFolderID,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	if _, err := store.GetFileByIDAndOwner(ctx, record.ID, "user-1"); err != nil {
		t.Errorf("Expected owner lookup to succeed, got %v", err)
	}

	_, err = store.GetFileByIDAndOwner(ctx, record.ID, "user-2")
	if !metadata.IsNotFound(err) {
		t.Errorf("Expected NotFound for wrong owner, got %v", err)
	}
}

// TestListByOwnerAndParent verifies ordering, pagination and owner scoping of
// listings.
func TestListByOwnerAndParent(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	// 25 records for user-1 at the root, 5 for user-2 interleaved.
	var ids []metadata.FileID
	for i := 0; i < 30; i++ {
		owner := metadata.UserID("user-1")
		if i%6 == 5 {
			owner = "user-2"
		}
		record, err := store.CreateFile(ctx, &metadata.FileRecord{
			OwnerID:  owner,
			Name:     fmt.Sprintf("file-%d", i),
			Kind:     metadata.KindFile,
			ParentID: metadata.RootFolderID,
		})
		if err != nil {
			t.Fatalf("CreateFile failed: %v", err)
		}
		if owner == "user-1" {
			ids = append(ids, record.ID)
		}
	}

	first, err := store.ListByOwnerAndParent(ctx, "user-1", metadata.RootFolderID, 0, 20)
	if err != nil {
		t.Fatalf("ListByOwnerAndParent failed: %v", err)
	}
	if len(first) != 20 {
		t.Fatalf("Expected 20 records on the first page, got %d", len(first))
	}
	// Most recently created first.
	if first[0].ID != ids[len(ids)-1] {
		t.Errorf("Expected newest record %q first, got %q", ids[len(ids)-1], first[0].ID)
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID <= first[i].ID {
			t.Fatalf("Expected strictly descending ids, got %q before %q", first[i-1].ID, first[i].ID)
		}
	}
	for _, record := range first {
		if record.OwnerID != "user-1" {
			t.Errorf("Listing leaked record %q owned by %q", record.ID, record.OwnerID)
		}
	}

	second, err := store.ListByOwnerAndParent(ctx, "user-1", metadata.RootFolderID, 20, 20)
	if err != nil {
		t.Fatalf("ListByOwnerAndParent failed: %v", err)
	}
	if len(second) != 5 {
		t.Fatalf("Expected 5 records on the second page, got %d", len(second))
	}
	if second[0].ID >= first[len(first)-1].ID {
		t.Error("Expected the second page to continue below the first")
	}

	third, err := store.ListByOwnerAndParent(ctx, "user-1", metadata.RootFolderID, 40, 20)
	if err != nil {
		t.Fatalf("ListByOwnerAndParent failed: %v", err)
	}
	if len(third) != 0 {
		t.Errorf("Expected an empty page past the end, got %d records", len(third))
	}
}

// TestListByOwnerAndParent_ParentFilter verifies that a non-root parent
// restricts the listing to direct children.
func TestListByOwnerAndParent_ParentFilter(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	folder, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID:  "user-1",
		Name:     "docs",
		Kind:     metadata.KindFolder,
		ParentID: metadata.RootFolderID,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	child, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID:  "user-1",
		Name:     "inside",
		Kind:     metadata.KindFile,
		ParentID: folder.ID,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if _, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID:  "user-1",
		Name:     "outside",
		Kind:     metadata.KindFile,
		ParentID: metadata.RootFolderID,
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	records, err := store.ListByOwnerAndParent(ctx, "user-1", folder.ID, 0, 20)
	if err != nil {
		t.Fatalf("ListByOwnerAndParent failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != child.ID {
		t.Errorf("Expected exactly the child record, got %d records", len(records))
	}

	// An unknown parent matches nothing rather than failing.
	records, err = store.ListByOwnerAndParent(ctx, "user-1", "99999999999999999999", 0, 20)
	if err != nil {
		t.Fatalf("ListByOwnerAndParent failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records for an unknown parent, got %d", len(records))
	}
}

// TestSetPublic verifies the atomic toggle and its owner scoping.
func TestSetPublic(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	record, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID:  "user-1",
		Name:     "file",
		Kind:     metadata.KindFile,
		ParentID: metadata.RootFolderID,
	})
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	updated, err := store.SetPublic(ctx, record.ID, "user-1", true)
	if err != nil {
		t.Fatalf("SetPublic failed: %v", err)
	}
	if !updated.Public {
		t.Error("Expected the record to be public after SetPublic(true)")
	}

	fetched, err := store.GetFileByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetFileByID failed: %v", err)
	}
	if !fetched.Public {
		t.Error("Expected the stored record to be public")
	}

	_, err = store.SetPublic(ctx, record.ID, "user-2", false)
	if !metadata.IsNotFound(err) {
		t.Errorf("Expected NotFound for non-owner SetPublic, got %v", err)
	}
	fetched, _ = store.GetFileByID(ctx, record.ID)
	if !fetched.Public {
		t.Error("Non-owner SetPublic must not change the record")
	}
}

// TestAllStorageKeys verifies that folders (no storage key) are skipped.
func TestAllStorageKeys(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	if _, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-1", Name: "docs", Kind: metadata.KindFolder, ParentID: metadata.RootFolderID,
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if _, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-1", Name: "a", Kind: metadata.KindFile, ParentID: metadata.RootFolderID, StorageKey: "key-a",
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	if _, err := store.CreateFile(ctx, &metadata.FileRecord{
		OwnerID: "user-2", Name: "b", Kind: metadata.KindImage, ParentID: metadata.RootFolderID, StorageKey: "key-b",
	}); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	keys, err := store.AllStorageKeys(ctx)
	if err != nil {
		t.Fatalf("AllStorageKeys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("Expected 2 storage keys, got %d", len(keys))
	}
	seen := map[string]bool{}
	for _, key := range keys {
		seen[key] = true
	}
	if !seen["key-a"] || !seen["key-b"] {
		t.Errorf("Expected keys key-a and key-b, got %v", keys)
	}
}

// TestCounts verifies the user and file counters.
func TestCounts(t *testing.T) {
	store := NewMemoryMetadataStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.CreateUser(ctx, fmt.Sprintf("user-%d@dylan.com", i), "hash"); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		if _, err := store.CreateFile(ctx, &metadata.FileRecord{
			OwnerID: "user-1", Name: fmt.Sprintf("f%d", i), Kind: metadata.KindFile, ParentID: metadata.RootFolderID,
		}); err != nil {
			t.Fatalf("CreateFile failed: %v", err)
		}
	}

	users, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if users != 3 {
		t.Errorf("Expected 3 users, got %d", users)
	}

	files, err := store.CountFiles(ctx)
	if err != nil {
		t.Fatalf("CountFiles failed: %v", err)
	}
	if files != 5 {
		t.Errorf("Expected 5 files, got %d", files)
	}
}
