package metadata

import "context"

// MetadataStore is the typed repository over users and file records.
//
// The interface exposes exactly the query shapes the service needs (lookup
// by id, lookup by owner and parent, counts) rather than a generic
// query-object passthrough. This keeps the stores small and lets each
// backend index for precisely these access paths.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// SetPublic in particular must be an atomic single-record update so that
// concurrent publish/unpublish calls from the same owner cannot lose
// updates.
//
// Error Contract:
// Domain failures are reported as *StoreError (check with IsNotFound /
// IsAlreadyExists); anything else is an infrastructure error.
type MetadataStore interface {
	// ========================================================================
	// Users
	// ========================================================================

	// CreateUser registers a new user with the given email and one-way
	// password hash. Returns ErrAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// GetUserByID returns the user with the given id, or ErrNotFound.
	GetUserByID(ctx context.Context, id UserID) (*User, error)

	// GetUserByCredentials returns the user matching both email and
	// password hash, or ErrNotFound. This is the credential-exchange
	// lookup; it never distinguishes "unknown email" from "wrong password".
	GetUserByCredentials(ctx context.Context, email, passwordHash string) (*User, error)

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (uint64, error)

	// ========================================================================
	// File records
	// ========================================================================

	// CreateFile persists a new file record and assigns its id. The
	// caller-provided ID field is ignored. Returns the stored record.
	CreateFile(ctx context.Context, record *FileRecord) (*FileRecord, error)

	// GetFileByID returns the record with the given id regardless of
	// owner, or ErrNotFound.
	GetFileByID(ctx context.Context, id FileID) (*FileRecord, error)

	// GetFileByIDAndOwner returns the record with the given id owned by
	// the given user, or ErrNotFound.
	GetFileByIDAndOwner(ctx context.Context, id FileID, owner UserID) (*FileRecord, error)

	// ListByOwnerAndParent returns up to limit of the owner's records,
	// skipping offset, ordered descending by id (most recently created
	// first). A parent of RootFolderID applies no parent filter and spans
	// all of the owner's records; any other parent restricts the listing
	// to direct children of that folder.
	//
	// The parent reference is not validated here; an unknown parent
	// simply matches nothing.
	ListByOwnerAndParent(ctx context.Context, owner UserID, parent FileID, offset, limit int) ([]*FileRecord, error)

	// SetPublic atomically updates the public flag of the record with the
	// given id owned by the given user and returns the updated record, or
	// ErrNotFound if no such record exists.
	SetPublic(ctx context.Context, id FileID, owner UserID, public bool) (*FileRecord, error)

	// CountFiles returns the total number of file records.
	CountFiles(ctx context.Context) (uint64, error)

	// AllStorageKeys returns the storage keys of every non-folder record.
	// Used by the garbage collector to build the referenced set.
	AllStorageKeys(ctx context.Context) ([]string, error)

	// ========================================================================
	// Lifecycle
	// ========================================================================

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
