package n8nstatus

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{ID: "999"}
	require.Equal(t, "execution 999 not found", err.Error())

	// Matches the sentinel so callers can branch on the error kind.
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(NewStorageError("/tmp/db.sqlite", os.ErrNotExist), ErrNotFound))
}

func TestStorageErrorWrapping(t *testing.T) {
	cause := os.ErrNotExist
	err := NewStorageError("/tmp/db.sqlite", cause)

	require.Equal(t, "database unavailable at /tmp/db.sqlite: file does not exist", err.Error())
	require.Equal(t, cause, err.Unwrap())
	require.True(t, errors.Is(err, cause))

	var storageErr *StorageError
	require.True(t, errors.As(err, &storageErr))
	require.Equal(t, "/tmp/db.sqlite", storageErr.Path)
}
