package files

import "errors"

var (
	// ErrNotFound indicates the file record or its content is absent, or
	// that the caller is not allowed to read it. Access denial is
	// deliberately indistinguishable from absence so that unauthorized
	// callers cannot confirm the existence of private records.
	ErrNotFound = errors.New("not found")

	// ErrNoContentForFolder indicates a content request on a folder.
	ErrNoContentForFolder = errors.New("a folder doesn't have content")
)

// ValidationCode identifies the first upload validation rule that failed.
type ValidationCode int

const (
	// CodeMissingName means no name was provided.
	CodeMissingName ValidationCode = iota

	// CodeMissingKind means the kind was absent or not one of file, image,
	// folder.
	CodeMissingKind

	// CodeMissingData means a non-folder upload carried no content bytes.
	CodeMissingData

	// CodeParentNotFound means the parent reference resolved to nothing.
	CodeParentNotFound

	// CodeParentNotFolder means the parent reference resolved to a
	// non-folder.
	CodeParentNotFolder
)

// ValidationError reports an upload that failed validation. The message is
// the user-visible error string.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// StorageError reports a content-store write failure during upload. The
// upload is aborted: no metadata record is persisted and no thumbnail job
// is enqueued.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage error: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
