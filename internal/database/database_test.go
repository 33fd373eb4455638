package database_test

import (
	"testing"

	"storefront/internal/database"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMigrates(t *testing.T) {
	db, err := database.Open("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer database.Close(db)

	for _, table := range []any{&models.Snapshot{}, &models.Category{}, &models.Product{}, &models.User{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := database.Open("oracle", "")
	assert.ErrorContains(t, err, "unsupported database driver")
}
