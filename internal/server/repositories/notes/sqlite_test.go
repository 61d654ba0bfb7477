package notes

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE notes (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  content TEXT NOT NULL,
  version INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func TestSQLite_InsertFindUpdate(t *testing.T) {
	db := setupSQLite(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	n := &models.Note{ID: "a", Title: "x", Content: "y", Version: 0, CreatedAt: 100, UpdatedAt: 100}
	require.NoError(t, r.Insert(ctx, n))

	got, err := r.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, n, got)

	upd := &models.Note{ID: "a", Title: "x2", Content: "y2", Version: 1, CreatedAt: 999, UpdatedAt: 200, Deleted: true}
	require.NoError(t, r.Update(ctx, upd))

	got, err = r.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, &models.Note{ID: "a", Title: "x2", Content: "y2", Version: 1, CreatedAt: 100, UpdatedAt: 200, Deleted: true}, got)

	var raw int
	require.NoError(t, db.QueryRow(`select deleted from notes where id = 'a'`).Scan(&raw))
	assert.Equal(t, 1, raw)
}

func TestSQLite_FindByID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))

	_, err := r.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)
}

func TestSQLite_InsertDuplicateFails(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &models.Note{ID: "a"}))
	err := r.Insert(ctx, &models.Note{ID: "a"})
	assert.ErrorContains(t, err, "failed to insert note")
}

func TestSQLite_UpdateIfVersion(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &models.Note{ID: "a", Version: 3}))

	err := r.UpdateIfVersion(ctx, &models.Note{ID: "a", Title: "late", Version: 3}, 2)
	assert.True(t, errors.Is(err, common.ErrVersionConflict), "got %v", err)

	require.NoError(t, r.UpdateIfVersion(ctx, &models.Note{ID: "a", Title: "ok", Version: 4}, 3))

	got, err := r.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Title)
	assert.Equal(t, int64(4), got.Version)
}

func TestSQLite_SelectAll_IncludesTombstones(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, &models.Note{ID: "b", CreatedAt: 2}))
	require.NoError(t, r.Insert(ctx, &models.Note{ID: "a", CreatedAt: 1, Deleted: true}))

	all, err := r.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.True(t, all[0].Deleted)
	assert.Equal(t, "b", all[1].ID)
}

func TestSQLite_SelectAll_EmptyIsNotNil(t *testing.T) {
	r := NewSQLiteRepository(setupSQLite(t))

	all, err := r.SelectAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
