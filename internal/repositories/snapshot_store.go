package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/metrics"
)

// Schema describes the persisted shape of one collection.
type Schema struct {
	// Version is the version written by Save and expected by Load.
	Version int
	// Migrate upgrades items stored at version from to version from+1.
	// A nil Migrate means older snapshots cannot be read.
	Migrate func(from int, items json.RawMessage) (json.RawMessage, error)
}

type envelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Items   json.RawMessage `json:"items"`
}

// SnapshotStore persists collection snapshots on top of a SnapshotRepository.
// Durability is best-effort: Save never returns an error and Load reports
// missing or unreadable content as absent.
type SnapshotStore struct {
	repo    SnapshotRepository
	timeout time.Duration
	now     func() time.Time
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(repo SnapshotRepository) *SnapshotStore {
	return &SnapshotStore{
		repo:    repo,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Save writes items under key, overwriting any previous snapshot.
func (s *SnapshotStore) Save(key string, schema Schema, items any) {
	body, err := json.Marshal(items)
	if err != nil {
		s.fail(key, "save", fmt.Errorf("failed to marshal items: %w", err))
		return
	}
	data, err := json.Marshal(envelope{Version: schema.Version, SavedAt: s.now().UTC(), Items: body})
	if err != nil {
		s.fail(key, "save", fmt.Errorf("failed to marshal envelope: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.repo.Put(ctx, key, data); err != nil {
		s.fail(key, "save", err)
	}
}

// Delete removes the snapshot stored under key. A missing key is not an error.
func (s *SnapshotStore) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.repo.Delete(ctx, key); err != nil && !errors.Is(err, ErrSnapshotNotFound) {
		s.fail(key, "delete", err)
	}
}

// Load decodes the snapshot stored under key into dst, migrating it to
// schema.Version first. It returns false when there is nothing usable.
func (s *SnapshotStore) Load(key string, schema Schema, dst any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			s.fail(key, "load", err)
		}
		return false
	}

	version, items, err := decodeEnvelope(data)
	if err != nil {
		s.fail(key, "load", err)
		return false
	}
	if version > schema.Version {
		s.fail(key, "load", fmt.Errorf("snapshot version %d is newer than supported version %d", version, schema.Version))
		return false
	}
	for v := version; v < schema.Version; v++ {
		if schema.Migrate == nil {
			s.fail(key, "load", fmt.Errorf("no migration from version %d", v))
			return false
		}
		if items, err = schema.Migrate(v, items); err != nil {
			s.fail(key, "load", fmt.Errorf("migration from version %d failed: %w", v, err))
			return false
		}
	}

	if err := json.Unmarshal(items, dst); err != nil {
		s.fail(key, "load", fmt.Errorf("failed to unmarshal items: %w", err))
		return false
	}
	return true
}

func (s *SnapshotStore) fail(key, op string, err error) {
	log.Printf("Snapshot %s of %q failed, continuing with in-memory state: %v", op, key, err)
	metrics.RecordSnapshotFailure(key, op)
}

// decodeEnvelope accepts both the versioned envelope and a bare JSON array,
// which is read as version 0.
func decodeEnvelope(data []byte) (int, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, nil, fmt.Errorf("empty snapshot")
	}
	if trimmed[0] == '[' {
		return 0, json.RawMessage(trimmed), nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return 0, nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	if len(env.Items) == 0 {
		return 0, nil, fmt.Errorf("snapshot has no items")
	}
	return env.Version, env.Items, nil
}
