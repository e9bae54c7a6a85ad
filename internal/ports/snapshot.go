package ports

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by SnapshotPort.Get when nothing is stored under the key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotPort is a minimal key-value store for serialized documents.
type SnapshotPort interface {
	// Get returns the document stored under key, or ErrSnapshotNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the document stored under key.
	// Implementations backed by Nakama storage require data to be a JSON object.
	Set(ctx context.Context, key string, data []byte) error

	// Clear removes the document. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
}
