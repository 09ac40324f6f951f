// Package metadata defines the DittoDrive data model and the typed
// repository interface over it.
//
// The package is storage-agnostic: concrete stores (BadgerDB, memory) live in
// subpackages and implement MetadataStore. Services depend only on the
// interface and receive a store handle at construction; lifecycle is owned by
// the process entry point.
package metadata

// UserID is the opaque identifier of a registered user.
type UserID string

// FileID is the opaque, store-generated identifier of a file record.
//
// Implementations must generate ids that are monotonically increasing by
// creation order and whose lexicographic order matches that creation order.
// Listings rely on this to produce a stable most-recent-first ordering.
type FileID string

// RootFolderID is the distinguished parent reference meaning "no parent /
// top level". It is a zero-like sentinel distinct from any generated id
// (generated ids are zero-padded to a fixed width).
const RootFolderID FileID = "0"

// FileKind classifies a file record.
type FileKind string

const (
	// KindFile is a plain file with byte content.
	KindFile FileKind = "file"

	// KindImage is a file whose upload additionally triggers derived
	// thumbnail generation.
	KindImage FileKind = "image"

	// KindFolder is a container; folders never carry content.
	KindFolder FileKind = "folder"
)

// Valid reports whether k is one of the three accepted kinds.
func (k FileKind) Valid() bool {
	switch k {
	case KindFile, KindImage, KindFolder:
		return true
	}
	return false
}

// User is a registered account.
//
// Users are created on registration and immutable afterwards. The password
// is stored only as a one-way hash; the clear text never reaches the store.
type User struct {
	ID           UserID
	Email        string
	PasswordHash string
}

// FileRecord is the metadata document for a file, image or folder.
//
// Invariants:
//   - Kind folder never has a StorageKey.
//   - Non-folder kinds always have a StorageKey once created (content is
//     written before the record is committed).
//   - ParentID is either RootFolderID or the id of an existing folder record.
//   - ID and OwnerID are immutable; Public is the only mutable field.
type FileRecord struct {
	ID       FileID
	OwnerID  UserID
	Name     string
	Kind     FileKind
	Public   bool
	ParentID FileID

	// StorageKey locates the raw bytes in the content store. Empty for
	// folders. Derived thumbnail variants live under "<StorageKey>_<width>".
	StorageKey string
}

// IsFolder reports whether the record is a folder.
func (r *FileRecord) IsFolder() bool {
	return r.Kind == KindFolder
}
