package files

import (
	"context"
	"fmt"

	"github.com/marmos91/dittodrive/pkg/metadata"
)

// UploadParams are the caller-supplied fields of an upload request.
type UploadParams struct {
	Name string

	// Kind is the raw kind string; validated against the three accepted
	// kinds.
	Kind string

	// ParentID is the parent reference. Empty means top level (the root
	// sentinel is substituted).
	ParentID metadata.FileID

	Public bool

	// Data is the decoded file content. Required for non-folder kinds.
	Data []byte
}

// Draft is a validated, normalized upload ready to be persisted.
type Draft struct {
	Name     string
	Kind     metadata.FileKind
	ParentID metadata.FileID
	Public   bool
	Data     []byte
}

// validateUpload checks an upload request and produces a normalized draft.
//
// Rules, checked in order (the first failure wins):
//  1. name is required
//  2. kind is required and must be file, image or folder
//  3. non-folder kinds must carry content bytes
//  4. a non-root parent reference must resolve to an existing folder
func (s *Service) validateUpload(ctx context.Context, params UploadParams) (*Draft, error) {
	if params.Name == "" {
		return nil, &ValidationError{Code: CodeMissingName, Message: "Missing name"}
	}

	kind := metadata.FileKind(params.Kind)
	if !kind.Valid() {
		return nil, &ValidationError{Code: CodeMissingKind, Message: "Missing type"}
	}

	if kind != metadata.KindFolder && len(params.Data) == 0 {
		return nil, &ValidationError{Code: CodeMissingData, Message: "Missing data"}
	}

	parent := params.ParentID
	if parent == "" {
		parent = metadata.RootFolderID
	}

	if parent != metadata.RootFolderID {
		record, err := s.meta.GetFileByID(ctx, parent)
		if err != nil {
			if metadata.IsNotFound(err) {
				return nil, &ValidationError{Code: CodeParentNotFound, Message: "Parent not found"}
			}
			return nil, fmt.Errorf("failed to resolve parent: %w", err)
		}
		if !record.IsFolder() {
			return nil, &ValidationError{Code: CodeParentNotFolder, Message: "Parent is not a folder"}
		}
	}

	return &Draft{
		Name:     params.Name,
		Kind:     kind,
		ParentID: parent,
		Public:   params.Public,
		Data:     params.Data,
	}, nil
}
