// Package badger implements metadata.MetadataStore on BadgerDB.
//
// BadgerDB is a fast embedded key-value store; it gives DittoDrive a
// persistent metadata repository without an external database process.
//
// Storage Model:
// The store uses namespaced key prefixes to organize data types:
//
//	user:id:<uid>              → JSON-encoded user
//	user:email:<email>         → uid (unique-email index)
//	file:<fid>                 → JSON-encoded file record
//	fown:<owner>:<fid>         → (empty) per-owner index
//	fpar:<owner>:<parent>:<fid> → (empty) per-owner-per-parent index
//	seq:file                   → id sequence state
//
// File ids come from a monotonic sequence and are zero-padded to 20 digits,
// so lexicographic key order matches creation order. Listings iterate the
// index prefixes in reverse to produce most-recent-first pages without
// loading the whole result set.
//
// Thread Safety:
// All operations are protected by a single read-write mutex. This
// coarse-grained locking is simple and correct; it also makes SetPublic an
// atomic read-modify-write without transaction retry loops.
package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// BadgerMetadataStore implements metadata.MetadataStore using BadgerDB.
type BadgerMetadataStore struct {
	mu sync.RWMutex

	db *badger.DB

	// fileSeq hands out monotonically increasing file ids. Sequences are
	// crash-safe: a restart may skip ids but never reuses one.
	fileSeq *badger.Sequence
}

// BadgerMetadataStoreConfig configures the store.
type BadgerMetadataStoreConfig struct {
	// DBPath is the directory holding the BadgerDB files.
	DBPath string

	// InMemory opens BadgerDB without disk persistence. Used by tests.
	InMemory bool
}

// NewBadgerMetadataStore opens (or creates) a BadgerDB-backed store.
func NewBadgerMetadataStore(ctx context.Context, config BadgerMetadataStoreConfig) (*BadgerMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(config.DBPath)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	// Metadata records are small; compression overhead is not worth it.
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	seq, err := db.GetSequence(keyFileSequence(), 64)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open file id sequence: %w", err)
	}

	return &BadgerMetadataStore{db: db, fileSeq: seq}, nil
}

// ============================================================================
// Key schema helpers
// ============================================================================

func keyFileSequence() []byte {
	return []byte("seq:file")
}

func keyUser(id metadata.UserID) []byte {
	return []byte("user:id:" + string(id))
}

func keyUserEmail(email string) []byte {
	return []byte("user:email:" + email)
}

func keyFile(id metadata.FileID) []byte {
	return []byte("file:" + string(id))
}

func prefixUsers() []byte {
	return []byte("user:id:")
}

func prefixFiles() []byte {
	return []byte("file:")
}

func keyOwnerIndex(owner metadata.UserID, id metadata.FileID) []byte {
	return []byte("fown:" + string(owner) + ":" + string(id))
}

func prefixOwnerIndex(owner metadata.UserID) []byte {
	return []byte("fown:" + string(owner) + ":")
}

func keyParentIndex(owner metadata.UserID, parent, id metadata.FileID) []byte {
	return []byte("fpar:" + string(owner) + ":" + string(parent) + ":" + string(id))
}

func prefixParentIndex(owner metadata.UserID, parent metadata.FileID) []byte {
	return []byte("fpar:" + string(owner) + ":" + string(parent) + ":")
}

// ============================================================================
// Stored representations
// ============================================================================

type userData struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

type fileData struct {
	ID         string `json:"id"`
	OwnerID    string `json:"owner_id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Public     bool   `json:"public"`
	ParentID   string `json:"parent_id"`
	StorageKey string `json:"storage_key,omitempty"`
}

func encodeUser(user *metadata.User) ([]byte, error) {
	return json.Marshal(userData{
		ID:           string(user.ID),
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	})
}

func decodeUser(raw []byte) (*metadata.User, error) {
	var data userData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &metadata.User{
		ID:           metadata.UserID(data.ID),
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
	}, nil
}

func encodeFile(record *metadata.FileRecord) ([]byte, error) {
	return json.Marshal(fileData{
		ID:         string(record.ID),
		OwnerID:    string(record.OwnerID),
		Name:       record.Name,
		Kind:       string(record.Kind),
		Public:     record.Public,
		ParentID:   string(record.ParentID),
		StorageKey: record.StorageKey,
	})
}

func decodeFile(raw []byte) (*metadata.FileRecord, error) {
	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode file record: %w", err)
	}
	return &metadata.FileRecord{
		ID:         metadata.FileID(data.ID),
		OwnerID:    metadata.UserID(data.OwnerID),
		Name:       data.Name,
		Kind:       metadata.FileKind(data.Kind),
		Public:     data.Public,
		ParentID:   metadata.FileID(data.ParentID),
		StorageKey: data.StorageKey,
	}, nil
}

// ============================================================================
// Users
// ============================================================================

func (s *BadgerMetadataStore) CreateUser(ctx context.Context, email, passwordHash string) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := &metadata.User{
		ID:           metadata.UserID(uuid.NewString()),
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyUserEmail(email))
		if err == nil {
			return metadata.AlreadyExists("email already registered")
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to check email index: %w", err)
		}

		raw, err := encodeUser(user)
		if err != nil {
			return err
		}
		if err := txn.Set(keyUser(user.ID), raw); err != nil {
			return fmt.Errorf("failed to store user: %w", err)
		}
		if err := txn.Set(keyUserEmail(email), []byte(user.ID)); err != nil {
			return fmt.Errorf("failed to store email index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BadgerMetadataStore) GetUserByID(ctx context.Context, id metadata.UserID) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *metadata.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyUser(id))
		if err == badger.ErrKeyNotFound {
			return metadata.NotFound("user not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *BadgerMetadataStore) GetUserByCredentials(ctx context.Context, email, passwordHash string) (*metadata.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *metadata.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyUserEmail(email))
		if err == badger.ErrKeyNotFound {
			return metadata.NotFound("user not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get email index: %w", err)
		}

		var id metadata.UserID
		if err := item.Value(func(val []byte) error {
			id = metadata.UserID(val)
			return nil
		}); err != nil {
			return err
		}

		userItem, err := txn.Get(keyUser(id))
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		return userItem.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	if user.PasswordHash != passwordHash {
		return nil, metadata.NotFound("user not found")
	}
	return user, nil
}

func (s *BadgerMetadataStore) CountUsers(ctx context.Context) (uint64, error) {
	return s.countPrefix(ctx, prefixUsers())
}

// ============================================================================
// File records
// ============================================================================

func (s *BadgerMetadataStore) CreateFile(ctx context.Context, record *metadata.FileRecord) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.fileSeq.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate file id: %w", err)
	}

	stored := *record
	stored.ID = metadata.FileID(fmt.Sprintf("%020d", next+1))

	err = s.db.Update(func(txn *badger.Txn) error {
		raw, err := encodeFile(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFile(stored.ID), raw); err != nil {
			return fmt.Errorf("failed to store file record: %w", err)
		}
		if err := txn.Set(keyOwnerIndex(stored.OwnerID, stored.ID), nil); err != nil {
			return fmt.Errorf("failed to store owner index: %w", err)
		}
		if err := txn.Set(keyParentIndex(stored.OwnerID, stored.ParentID, stored.ID), nil); err != nil {
			return fmt.Errorf("failed to store parent index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *BadgerMetadataStore) GetFileByID(ctx context.Context, id metadata.FileID) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getFile(id)
}

func (s *BadgerMetadataStore) GetFileByIDAndOwner(ctx context.Context, id metadata.FileID, owner metadata.UserID) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.getFile(id)
	if err != nil {
		return nil, err
	}
	if record.OwnerID != owner {
		return nil, metadata.NotFound("file not found")
	}
	return record, nil
}

// getFile reads a single record. Caller must hold at least a read lock.
func (s *BadgerMetadataStore) getFile(id metadata.FileID) (*metadata.FileRecord, error) {
	var record *metadata.FileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyFile(id))
		if err == badger.ErrKeyNotFound {
			return metadata.NotFound("file not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get file record: %w", err)
		}
		return item.Value(func(val []byte) error {
			record, err = decodeFile(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *BadgerMetadataStore) ListByOwnerAndParent(ctx context.Context, owner metadata.UserID, parent metadata.FileID, offset, limit int) ([]*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Root sentinel means "no parent filter": iterate the per-owner index
	// spanning every record of the owner.
	prefix := prefixParentIndex(owner, parent)
	if parent == metadata.RootFolderID {
		prefix = prefixOwnerIndex(owner)
	}

	records := make([]*metadata.FileRecord, 0, limit)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the end of the prefix range.
		seekKey := append(append([]byte{}, prefix...), 0xFF)

		skipped := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if len(records) >= limit {
				break
			}

			key := it.Item().Key()
			id := metadata.FileID(key[len(prefix):])

			item, err := txn.Get(keyFile(id))
			if err != nil {
				return fmt.Errorf("dangling index entry for file %s: %w", id, err)
			}
			if err := item.Value(func(val []byte) error {
				record, err := decodeFile(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BadgerMetadataStore) SetPublic(ctx context.Context, id metadata.FileID, owner metadata.UserID, public bool) (*metadata.FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *metadata.FileRecord
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyFile(id))
		if err == badger.ErrKeyNotFound {
			return metadata.NotFound("file not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get file record: %w", err)
		}

		var record *metadata.FileRecord
		if err := item.Value(func(val []byte) error {
			record, err = decodeFile(val)
			return err
		}); err != nil {
			return err
		}

		if record.OwnerID != owner {
			return metadata.NotFound("file not found")
		}

		record.Public = public
		raw, err := encodeFile(record)
		if err != nil {
			return err
		}
		if err := txn.Set(keyFile(id), raw); err != nil {
			return fmt.Errorf("failed to update file record: %w", err)
		}

		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *BadgerMetadataStore) CountFiles(ctx context.Context) (uint64, error) {
	return s.countPrefix(ctx, prefixFiles())
}

func (s *BadgerMetadataStore) AllStorageKeys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	prefix := prefixFiles()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				record, err := decodeFile(val)
				if err != nil {
					return err
				}
				if record.StorageKey != "" {
					keys = append(keys, record.StorageKey)
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// countPrefix counts keys under a prefix with a keys-only scan.
func (s *BadgerMetadataStore) countPrefix(ctx context.Context, prefix []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count uint64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ============================================================================
// Lifecycle
// ============================================================================

func (s *BadgerMetadataStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db.IsClosed() {
		return fmt.Errorf("database is closed")
	}
	return nil
}

// Close releases the id sequence and closes the database.
func (s *BadgerMetadataStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fileSeq.Release(); err != nil {
		return fmt.Errorf("failed to release file id sequence: %w", err)
	}
	return s.db.Close()
}
