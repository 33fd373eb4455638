package repositories

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned when no snapshot is stored under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository defines the interface for raw snapshot storage.
type SnapshotRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
