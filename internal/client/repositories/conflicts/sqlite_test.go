package conflicts

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
	sm "github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE conflicts (
  id TEXT PRIMARY KEY,
  client_note TEXT NOT NULL,
  server_note TEXT NOT NULL,
  detected_at INTEGER NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestSaveGetListDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	c1 := &models.Conflict{
		ID:         "a",
		ClientNote: sm.Note{ID: "a", Title: "mine", Version: 1},
		ServerNote: sm.Note{ID: "a", Title: "theirs", Version: 3, UpdatedAt: 1_700_000_000_000},
		DetectedAt: 10,
	}
	require.NoError(t, r.Save(ctx, c1))
	require.NoError(t, r.Save(ctx, &models.Conflict{ID: "b", DetectedAt: 5}))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, c1, got)

	c1.ServerNote.Version = 4
	c1.DetectedAt = 20
	require.NoError(t, r.Save(ctx, c1), "saving again replaces the row")

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, int64(4), all[1].ServerNote.Version)

	require.NoError(t, r.Delete(ctx, "a"))
	_, err = r.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_CorruptRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, client_note, server_note, detected_at FROM conflicts WHERE id = ?`)).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_note", "server_note", "detected_at"}).
			AddRow("a", "{not json", "{}", 1))

	_, err = NewSQLiteRepository(db).Get(context.Background(), "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
