package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get for a path that holds no object.
var ErrNotFound = errors.New("storage: object not found")

// Storage defines the interface for blob storage operations.
// Paths are slash-separated and relative to the store's root.
type Storage interface {
	// Save writes content to path, replacing any previous object.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the object at path. The caller closes the reader.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
}
