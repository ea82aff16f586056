package ports

import (
	"context"
)

// SnapshotStore persists serialized snapshots as opaque blobs.
// The application state keeps its whole tree under one key; scene documents use their own keys.
type SnapshotStore interface {
	// Save overwrites the snapshot stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves the snapshot stored under key.
	// Returns domain.ErrSnapshotNotFound if nothing is stored.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys.
	List(ctx context.Context) ([]string, error)
}
