package metadata

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
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
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB
);`)
	require.NoError(t, err)
	return db
}

func TestSetGetDelete(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	_, ok, err := r.Get(ctx, KeyLastPushAt)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, KeyLastPushAt, "100"))
	require.NoError(t, r.Set(ctx, KeyLastPushAt, "200"))

	v, ok, err := r.Get(ctx, KeyLastPushAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "200", v)

	require.NoError(t, r.Set(ctx, KeyLastPullAt, "50"))
	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{KeyLastPushAt: "200", KeyLastPullAt: "50"}, all)

	require.NoError(t, r.Delete(ctx, KeyLastPushAt))
	_, ok, err = r.Get(ctx, KeyLastPushAt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM metadata WHERE key = ?`)).WithArgs("k").WillReturnError(boom)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO metadata`)).WithArgs("k", "v").WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT key, value FROM metadata`)).WillReturnError(boom)

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, _, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Set(ctx, "k", "v"), boom)
	_, err = r.List(ctx)
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
