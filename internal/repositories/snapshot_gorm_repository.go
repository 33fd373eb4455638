package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSnapshotRepository is a GORM implementation of SnapshotRepository.
type GORMSnapshotRepository struct {
	db *gorm.DB
}

// NewGORMSnapshotRepository creates a new instance of GORMSnapshotRepository.
func NewGORMSnapshotRepository(db *gorm.DB) *GORMSnapshotRepository {
	return &GORMSnapshotRepository{
		db: db,
	}
}

// Get retrieves the snapshot stored under key.
func (r *GORMSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var snapshot models.Snapshot
	if err := r.db.WithContext(ctx).First(&snapshot, "name = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("snapshot %q: %w", key, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to get snapshot %q: %w", key, err)
	}
	return snapshot.Value, nil
}

// Put upserts the snapshot stored under key.
func (r *GORMSnapshotRepository) Put(ctx context.Context, key string, value []byte) error {
	snapshot := models.Snapshot{Name: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot stored under key.
func (r *GORMSnapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Snapshot{}, "name = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}
