package repositories

import (
	"context"
	"fmt"
	"sync"
)

// MockSnapshotRepository is an in-memory implementation of SnapshotRepository.
type MockSnapshotRepository struct {
	snapshots map[string][]byte
	mu        sync.RWMutex
	putErr    error
}

// NewMockSnapshotRepository creates a new instance of MockSnapshotRepository.
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make(map[string][]byte),
	}
}

// FailPuts makes every subsequent Put return err. Pass nil to restore normal behaviour.
func (r *MockSnapshotRepository) FailPuts(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putErr = err
}

// Get returns a copy of the snapshot stored under key.
func (r *MockSnapshotRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.snapshots[key]
	if !ok {
		return nil, fmt.Errorf("snapshot %q: %w", key, ErrSnapshotNotFound)
	}
	return append([]byte(nil), value...), nil
}

// Put stores value under key, replacing any previous snapshot.
func (r *MockSnapshotRepository) Put(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.putErr != nil {
		return r.putErr
	}
	r.snapshots[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the snapshot stored under key.
func (r *MockSnapshotRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.snapshots, key)
	return nil
}
