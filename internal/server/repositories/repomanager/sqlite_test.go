package repomanager

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the real embedded migrations against an in-memory SQLite database.
func TestSQLiteMigrations_CreateNotesTable(t *testing.T) {
	db, m, err := Open(DriverSQLite, ":memory:", logging.Nop{})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx, db))
	// idempotent
	require.NoError(t, m.RunMigrations(ctx, db))

	repo := m.Notes(db)
	require.NoError(t, repo.Insert(ctx, &models.Note{ID: "a", Title: "x", Content: "y"}))

	got, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Title)

	_, err = db.ExecContext(ctx, `insert into notes (id, title, content, version, created_at, updated_at) values ('neg', '', '', -1, 0, 0)`)
	assert.Error(t, err, "negative versions are rejected by the schema")
}

func TestSQLiteMigrations_LogThroughLogger(t *testing.T) {
	var buf bytes.Buffer
	db, m, err := Open(DriverSQLite, ":memory:", logging.NewJSONLogger(&buf, slog.LevelInfo))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, m.RunMigrations(context.Background(), db))

	out := buf.String()
	assert.Contains(t, out, `"module":"migrations"`)
	assert.Contains(t, out, "00001_")
	assert.Contains(t, out, "successfully migrated database")
}
