package n8nstatus

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a specific execution id matched no record. It is an
// expected outcome, not a storage failure, and callers surface it with a
// distinct exit code. Match with errors.Is; concrete errors carry the id via
// NotFoundError.
var ErrNotFound = errors.New("execution not found")

// NotFoundError reports which execution id matched no record.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("execution %s not found", e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError indicates the database could not be opened or read: the file
// is missing, is not a valid SQLite database, or lacks the expected n8n
// schema. It supports Go's error wrapping patterns with Unwrap().
type StorageError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("database unavailable at %s: %v", e.Path, e.Cause)
}

// Unwrap implements the error unwrapping interface for errors.Is and errors.As.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError wraps a low-level database failure with the path that was
// being accessed.
func NewStorageError(path string, cause error) *StorageError {
	return &StorageError{Path: path, Cause: cause}
}
