// Package memory implements an in-memory MetadataStore.
//
// The store keeps all users and file records in maps guarded by a single
// read-write mutex. It is intended for tests and local development; nothing
// survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// MemoryMetadataStore implements metadata.MetadataStore with plain maps.
//
// Thread Safety:
// All operations are protected by a single read-write mutex, making the
// store safe for concurrent use. The coarse lock also makes SetPublic an
// atomic read-modify-write.
type MemoryMetadataStore struct {
	mu sync.RWMutex

	users        map[metadata.UserID]*metadata.User
	usersByEmail map[string]metadata.UserID

	files      map[metadata.FileID]*metadata.FileRecord
	nextFileID uint64

	closed bool
}

// NewMemoryMetadataStore creates an empty in-memory store.
func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{
		users:        make(map[metadata.UserID]*metadata.User),
		usersByEmail: make(map[string]metadata.UserID),
		files:        make(map[metadata.FileID]*metadata.FileRecord),
	}
}

// nextID returns the next file id. Ids are zero-padded so that their
// lexicographic order matches creation order. Caller must hold mu.
func (s *MemoryMetadataStore) nextID() metadata.FileID {
	s.nextFileID++
	return metadata.FileID(fmt.Sprintf("%020d", s.nextFileID))
}

// ============================================================================
// Users
// ============================================================================

func (s *MemoryMetadataStore) CreateUser(ctx context.Context, email, passwordHash string) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[email]; exists {
		return nil, metadata.AlreadyExists("email already registered")
	}

	user := &metadata.User{
		ID:           metadata.UserID(uuid.NewString()),
		Email:        email,
		PasswordHash: passwordHash,
	}
	s.users[user.ID] = user
	s.usersByEmail[email] = user.ID

	copied := *user
	return &copied, nil
}

func (s *MemoryMetadataStore) GetUserByID(ctx context.Context, id metadata.UserID) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, metadata.NotFound("user not found")
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryMetadataStore) GetUserByCredentials(ctx context.Context, email, passwordHash string) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, metadata.NotFound("user not found")
	}
	user := s.users[id]
	if user.PasswordHash != passwordHash {
		return nil, metadata.NotFound("user not found")
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryMetadataStore) CountUsers(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.users)), nil
}

// ============================================================================
// File records
// ============================================================================

func (s *MemoryMetadataStore) CreateFile(ctx context.Context, record *metadata.FileRecord) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	stored.ID = s.nextID()
	s.files[stored.ID] = &stored

	copied := stored
	return &copied, nil
}

func (s *MemoryMetadataStore) GetFileByID(ctx context.Context, id metadata.FileID) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.files[id]
	if !ok {
		return nil, metadata.NotFound("file not found")
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryMetadataStore) GetFileByIDAndOwner(ctx context.Context, id metadata.FileID, owner metadata.UserID) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.files[id]
	if !ok || record.OwnerID != owner {
		return nil, metadata.NotFound("file not found")
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryMetadataStore) ListByOwnerAndParent(ctx context.Context, owner metadata.UserID, parent metadata.FileID, offset, limit int) ([]*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*metadata.FileRecord, 0)
	for _, record := range s.files {
		if record.OwnerID != owner {
			continue
		}
		if parent != metadata.RootFolderID && record.ParentID != parent {
			continue
		}
		matched = append(matched, record)
	}

	// Descending by id: most recently created first.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return []*metadata.FileRecord{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*metadata.FileRecord, 0, end-offset)
	for _, record := range matched[offset:end] {
		copied := *record
		page = append(page, &copied)
	}
	return page, nil
}

func (s *MemoryMetadataStore) SetPublic(ctx context.Context, id metadata.FileID, owner metadata.UserID, public bool) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.files[id]
	if !ok || record.OwnerID != owner {
		return nil, metadata.NotFound("file not found")
	}
	record.Public = public

	copied := *record
	return &copied, nil
}

func (s *MemoryMetadataStore) AllStorageKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.files))
	for _, record := range s.files {
		if record.StorageKey != "" {
			keys = append(keys, record.StorageKey)
		}
	}
	return keys, nil
}

func (s *MemoryMetadataStore) CountFiles(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.files)), nil
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *MemoryMetadataStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("store is closed")
	}
	return nil
}

func (s *MemoryMetadataStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
