package models

import "time"

// Snapshot is a persisted collection payload keyed by collection name.
type Snapshot struct {
	Name      string    `gorm:"primaryKey;type:varchar(64)"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time
}
