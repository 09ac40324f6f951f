package metadata

import "errors"

// StoreError represents a domain error from metadata store operations.
//
// These are business logic errors (record not found, email already taken)
// as opposed to infrastructure errors (disk failure, closed database).
// The HTTP layer translates StoreError codes to status codes.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested user or file record doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates a unique constraint was violated
	// (currently only the user email)
	ErrAlreadyExists

	// ErrInvalidArgument indicates a malformed identifier or parameter
	ErrInvalidArgument
)

// NotFound builds a StoreError with code ErrNotFound.
func NotFound(message string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: message}
}

// AlreadyExists builds a StoreError with code ErrAlreadyExists.
func AlreadyExists(message string) *StoreError {
	return &StoreError{Code: ErrAlreadyExists, Message: message}
}

// IsNotFound reports whether err is (or wraps) a StoreError with code
// ErrNotFound.
func IsNotFound(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Code == ErrNotFound
}

// IsAlreadyExists reports whether err is (or wraps) a StoreError with code
// ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Code == ErrAlreadyExists
}
