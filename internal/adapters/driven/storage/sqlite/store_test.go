package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clharvest/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "harvest.db"))
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})

	return store
}

func testRepository() domain.Repository {
	return domain.Repository{
		URL:          "https://api.example.com/repos/alice/kernels",
		Owner:        "alice",
		Name:         "kernels",
		Fork:         true,
		Stars:        42,
		Contributors: 7,
		Forks:        3,
		CreatedAt:    time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewStore(t *testing.T) {
	t.Run("creates schema on a fresh database", func(t *testing.T) {
		store := setupTestStore(t)

		var count int
		err := store.db.QueryRow("SELECT COUNT(*) FROM Repositories").Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("rejects an empty path", func(t *testing.T) {
		_, err := NewStore("")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("reopening an existing database is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "harvest.db")

		first, err := NewStore(path)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := NewStore(path)
		require.NoError(t, err)
		assert.NoError(t, second.Close())
	})
}

func TestStore_Repositories(t *testing.T) {
	ctx := context.Background()

	t.Run("token lookup on a missing record reports not found", func(t *testing.T) {
		store := setupTestStore(t)

		_, err := store.RepositoryToken(ctx, "nope")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("upsert then token lookup round-trips the freshness token", func(t *testing.T) {
		store := setupTestStore(t)
		repo := testRepository()

		require.NoError(t, store.UpsertRepository(ctx, repo))

		token, err := store.RepositoryToken(ctx, repo.URL)
		require.NoError(t, err)
		assert.Equal(t, "2016-01-01T00:00:00Z", token)
	})

	t.Run("upsert replaces the record wholesale", func(t *testing.T) {
		store := setupTestStore(t)
		repo := testRepository()
		require.NoError(t, store.UpsertRepository(ctx, repo))

		repo.Stars = 100
		repo.UpdatedAt = time.Date(2017, 6, 15, 12, 30, 0, 0, time.UTC)
		require.NoError(t, store.UpsertRepository(ctx, repo))

		var count, stars int
		require.NoError(t, store.db.QueryRow(
			"SELECT COUNT(*) FROM Repositories").Scan(&count))
		require.NoError(t, store.db.QueryRow(
			"SELECT stars FROM Repositories WHERE url = ?", repo.URL).Scan(&stars))
		assert.Equal(t, 1, count)
		assert.Equal(t, 100, stars)

		token, err := store.RepositoryToken(ctx, repo.URL)
		require.NoError(t, err)
		assert.Equal(t, "2017-06-15T12:30:00Z", token)
	})

	t.Run("fork flag persists as an integer", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.UpsertRepository(ctx, testRepository()))

		var fork int
		require.NoError(t, store.db.QueryRow(
			"SELECT fork FROM Repositories").Scan(&fork))
		assert.Equal(t, 1, fork)
	})
}

func TestStore_Files(t *testing.T) {
	ctx := context.Background()

	meta := domain.FileMeta{
		URL:     "https://api.example.com/blobs/sha-k",
		Path:    "kernel.cl",
		RepoURL: "https://api.example.com/repos/alice/kernels",
		SHA:     "sha-k",
		Size:    40,
	}

	t.Run("token lookup on a missing record reports not found", func(t *testing.T) {
		store := setupTestStore(t)

		_, err := store.FileToken(ctx, meta.URL)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("upsert writes metadata and content as a pair", func(t *testing.T) {
		store := setupTestStore(t)

		require.NoError(t, store.UpsertFile(ctx, meta, "kernel void f() {}"))

		token, err := store.FileToken(ctx, meta.URL)
		require.NoError(t, err)
		assert.Equal(t, "sha-k", token)

		var content string
		require.NoError(t, store.db.QueryRow(
			"SELECT content FROM ContentFiles WHERE url = ?", meta.URL).Scan(&content))
		assert.Equal(t, "kernel void f() {}", content)

		var metaCount, contentCount int
		require.NoError(t, store.db.QueryRow(
			"SELECT COUNT(*) FROM ContentMeta").Scan(&metaCount))
		require.NoError(t, store.db.QueryRow(
			"SELECT COUNT(*) FROM ContentFiles").Scan(&contentCount))
		assert.Equal(t, 1, metaCount)
		assert.Equal(t, 1, contentCount)
	})

	t.Run("upsert replaces both records wholesale", func(t *testing.T) {
		store := setupTestStore(t)
		require.NoError(t, store.UpsertFile(ctx, meta, "old content"))

		updated := meta
		updated.SHA = "sha-k2"
		require.NoError(t, store.UpsertFile(ctx, updated, "new content"))

		token, err := store.FileToken(ctx, meta.URL)
		require.NoError(t, err)
		assert.Equal(t, "sha-k2", token)

		var content string
		require.NoError(t, store.db.QueryRow(
			"SELECT content FROM ContentFiles WHERE url = ?", meta.URL).Scan(&content))
		assert.Equal(t, "new content", content)

		var count int
		require.NoError(t, store.db.QueryRow(
			"SELECT COUNT(*) FROM ContentFiles").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestStore_SaveRun(t *testing.T) {
	ctx := context.Background()

	store := setupTestStore(t)
	run := domain.HarvestRun{
		ID:         "run-1",
		StartedAt:  time.Date(2016, 1, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2016, 1, 1, 11, 0, 0, 0, time.UTC),
		Stats: domain.StatsSnapshot{
			ReposNew:       5,
			FilesNew:       120,
			FilesUnchanged: 30,
			Errors:         2,
		},
	}

	require.NoError(t, store.SaveRun(ctx, run))

	var filesNew, errCount int
	var finished string
	require.NoError(t, store.db.QueryRow(
		"SELECT files_new, errors, finished_at FROM HarvestRuns WHERE id = ?",
		run.ID).Scan(&filesNew, &errCount, &finished))
	assert.Equal(t, 120, filesNew)
	assert.Equal(t, 2, errCount)
	assert.Equal(t, "2016-01-01T11:00:00Z", finished)
}
