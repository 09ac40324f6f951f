// Package files implements the file metadata service: upload validation,
// record creation with write-then-commit ordering, access control, paginated
// listings and content retrieval with derived thumbnail widths.
package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/content"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// JobQueue accepts thumbnail jobs. Enqueue is fire-and-forget from the
// uploader's perspective: the upload response never waits for thumbnail
// completion. The thumbnail pipeline implements this interface.
type JobQueue interface {
	Enqueue(ctx context.Context, fileID metadata.FileID, owner metadata.UserID) error
}

// Service coordinates the metadata store, the content store and the
// thumbnail queue. All dependencies are injected at construction.
type Service struct {
	meta     metadata.MetadataStore
	contents content.ContentStore
	queue    JobQueue
}

// NewService creates a files service. queue may be nil, in which case image
// uploads simply don't produce thumbnails (used by some tests).
func NewService(meta metadata.MetadataStore, contents content.ContentStore, queue JobQueue) *Service {
	return &Service{meta: meta, contents: contents, queue: queue}
}

// Create validates an upload and persists it.
//
// For non-folder kinds the content bytes are written to the content store
// first; metadata is committed only after the write succeeds. A content
// write failure therefore never leaves a partial record behind, and no
// thumbnail job is enqueued for it. For image kinds a thumbnail job is
// enqueued after the record is committed.
func (s *Service) Create(ctx context.Context, owner metadata.UserID, params UploadParams) (*metadata.FileRecord, error) {
	draft, err := s.validateUpload(ctx, params)
	if err != nil {
		return nil, err
	}

	record := &metadata.FileRecord{
		OwnerID:  owner,
		Name:     draft.Name,
		Kind:     draft.Kind,
		Public:   draft.Public,
		ParentID: draft.ParentID,
	}

	if draft.Kind != metadata.KindFolder {
		key := content.NewStorageKey()
		if err := s.contents.WriteContent(ctx, key, draft.Data); err != nil {
			return nil, &StorageError{Err: err}
		}
		record.StorageKey = key
	}

	created, err := s.meta.CreateFile(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to persist file record: %w", err)
	}

	if created.Kind == metadata.KindImage && s.queue != nil {
		if err := s.queue.Enqueue(ctx, created.ID, created.OwnerID); err != nil {
			// The upload itself succeeded; a missed thumbnail only
			// shows up later as a NotFound on the derived width.
			logger.Warn("failed to enqueue thumbnail job for file %s: %v", created.ID, err)
		}
	}

	return created, nil
}

// Get returns the record with the given id owned by the caller.
func (s *Service) Get(ctx context.Context, owner metadata.UserID, id metadata.FileID) (*metadata.FileRecord, error) {
	record, err := s.meta.GetFileByIDAndOwner(ctx, id, owner)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	return record, nil
}

// List returns one page of the owner's records under the given parent,
// most recently created first.
//
// The root sentinel (or an empty parent) spans all of the owner's records.
// A non-root parent that doesn't resolve to an existing folder yields an
// empty page, not an error. Pages are zero-based; negative pages are
// clamped to zero. Listings are always scoped to the owner, including at
// the root.
func (s *Service) List(ctx context.Context, owner metadata.UserID, parent metadata.FileID, page int) ([]*metadata.FileRecord, error) {
	if page < 0 {
		page = 0
	}
	if parent == "" {
		parent = metadata.RootFolderID
	}

	if parent != metadata.RootFolderID {
		record, err := s.meta.GetFileByID(ctx, parent)
		if err != nil {
			if metadata.IsNotFound(err) {
				return []*metadata.FileRecord{}, nil
			}
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		if !record.IsFolder() {
			return []*metadata.FileRecord{}, nil
		}
	}

	records, err := s.meta.ListByOwnerAndParent(ctx, owner, parent, page*PageSize, PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return records, nil
}

// SetPublic toggles the public flag of the caller's record and returns the
// updated record. The update is atomic in the store.
func (s *Service) SetPublic(ctx context.Context, owner metadata.UserID, id metadata.FileID, public bool) (*metadata.FileRecord, error) {
	record, err := s.meta.SetPublic(ctx, id, owner, public)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update public flag: %w", err)
	}
	return record, nil
}

// GetContent returns the raw bytes of a file, or of one of its derived
// thumbnail widths when width > 0, together with the file record.
//
// The same CanRead predicate guards this path and the metadata show path.
// A caller who may not read the record gets ErrNotFound, never a
// permission error: private records must be indistinguishable from absent
// ones. A missing derived width is also ErrNotFound; nothing records which
// widths were successfully generated.
func (s *Service) GetContent(ctx context.Context, id metadata.FileID, width int, caller metadata.UserID) ([]byte, *metadata.FileRecord, error) {
	record, err := s.meta.GetFileByID(ctx, id)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get file record: %w", err)
	}

	if !CanRead(record, caller) {
		return nil, nil, ErrNotFound
	}

	if record.IsFolder() {
		return nil, nil, ErrNoContentForFolder
	}

	key := record.StorageKey
	if width > 0 {
		key = content.KeyForWidth(key, width)
	}

	data, err := s.contents.ReadContent(ctx, key)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to read content: %w", err)
	}
	return data, record, nil
}

// Counts returns the total number of users and file records, for the
// /stats endpoint.
func (s *Service) Counts(ctx context.Context) (users, fileCount uint64, err error) {
	users, err = s.meta.CountUsers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	fileCount, err = s.meta.CountFiles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count files: %w", err)
	}
	return users, fileCount, nil
}
