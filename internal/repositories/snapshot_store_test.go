package repositories_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"testing"

	"storefront/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

var itemSchema = repositories.Schema{
	Version: 1,
	Migrate: func(from int, items json.RawMessage) (json.RawMessage, error) {
		var legacy []map[string]any
		if err := json.Unmarshal(items, &legacy); err != nil {
			return nil, err
		}
		for _, l := range legacy {
			if v, ok := l["legacyState"]; ok {
				l["state"] = v
				delete(l, "legacyState")
			}
		}
		return json.Marshal(legacy)
	},
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)

	store.Save("items", itemSchema, []item{{ID: "a", State: "x"}, {ID: "b", State: "y"}})

	var loaded []item
	ok := store.Load("items", itemSchema, &loaded)
	require.True(t, ok)
	assert.Equal(t, []item{{ID: "a", State: "x"}, {ID: "b", State: "y"}}, loaded)

	raw, err := repo.Get(context.Background(), "items")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":1`)
}

func TestSnapshotStore_SaveOverwrites(t *testing.T) {
	store := repositories.NewSnapshotStore(repositories.NewMockSnapshotRepository())

	store.Save("items", itemSchema, []item{{ID: "a"}})
	store.Save("items", itemSchema, []item{})

	var loaded []item
	require.True(t, store.Load("items", itemSchema, &loaded))
	assert.Empty(t, loaded)
}

func TestSnapshotStore_LoadMissingIsAbsent(t *testing.T) {
	store := repositories.NewSnapshotStore(repositories.NewMockSnapshotRepository())

	var loaded []item
	assert.False(t, store.Load("nothing", itemSchema, &loaded))
}

func TestSnapshotStore_LoadCorruptIsAbsent(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)

	for _, payload := range []string{"{not json", `{"version":1}`, "", `{"version":1,"items":{"id":1}}`} {
		require.NoError(t, repo.Put(context.Background(), "items", []byte(payload)))
		var loaded []item
		assert.False(t, store.Load("items", itemSchema, &loaded), "payload %q", payload)
	}
}

func TestSnapshotStore_LoadLegacyArrayRunsMigration(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)
	require.NoError(t, repo.Put(context.Background(), "items", []byte(`[{"id":"a","legacyState":"old"}]`)))

	var loaded []item
	require.True(t, store.Load("items", itemSchema, &loaded))
	assert.Equal(t, []item{{ID: "a", State: "old"}}, loaded)
}

func TestSnapshotStore_LoadWithoutMigrationIsAbsent(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)
	require.NoError(t, repo.Put(context.Background(), "items", []byte(`[{"id":"a"}]`)))

	var loaded []item
	assert.False(t, store.Load("items", repositories.Schema{Version: 2}, &loaded))
}

func TestSnapshotStore_LoadNewerVersionIsAbsent(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)
	require.NoError(t, repo.Put(context.Background(), "items", []byte(`{"version":7,"items":[]}`)))

	var loaded []item
	assert.False(t, store.Load("items", itemSchema, &loaded))
}

func TestSnapshotStore_SaveFailureIsSwallowed(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)
	store.Save("items", itemSchema, []item{{ID: "kept"}})

	repo.FailPuts(errors.New("quota exceeded"))
	assert.NotPanics(t, func() {
		store.Save("items", itemSchema, []item{{ID: "lost"}})
	})

	repo.FailPuts(nil)
	var loaded []item
	require.True(t, store.Load("items", itemSchema, &loaded))
	assert.Equal(t, []item{{ID: "kept"}}, loaded)
}

func TestSnapshotStore_Delete(t *testing.T) {
	repo := repositories.NewMockSnapshotRepository()
	store := repositories.NewSnapshotStore(repo)
	store.Save("items", itemSchema, []item{{ID: "a"}})

	store.Delete("items")
	_, err := repo.Get(context.Background(), "items")
	assert.ErrorIs(t, err, repositories.ErrSnapshotNotFound)

	var loaded []item
	assert.False(t, store.Load("items", itemSchema, &loaded))
	store.Delete("items")
}
