package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	assert.IsType(t, &notes.PostgresRepository{}, NewPostgresRepositoryManager(logging.Nop{}).Notes(db))
	assert.IsType(t, &notes.SQLiteRepository{}, NewSQLiteRepositoryManager(logging.Nop{}).Notes(db))

	mem := NewMemoryRepositoryManager()
	assert.Same(t, mem.Notes(nil), mem.Notes(db), "memory manager must share one repository")
}

func TestRunMigrations_UsesDialectDirectory(t *testing.T) {
	tests := []struct {
		name    string
		manager RepositoryManager
		wantDir string
	}{
		{name: "postgres", manager: NewPostgresRepositoryManager(logging.Nop{}), wantDir: "postgres"},
		{name: "sqlite", manager: NewSQLiteRepositoryManager(logging.Nop{}), wantDir: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDir string
			stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
				gotDir = dir
				return nil
			})

			require.NoError(t, tt.manager.RunMigrations(context.Background(), newDB(t)))
			assert.Equal(t, tt.wantDir, gotDir)
		})
	}
}

func TestRunMigrations_Error(t *testing.T) {
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	err := NewPostgresRepositoryManager(logging.Nop{}).RunMigrations(context.Background(), newDB(t))
	assert.EqualError(t, err, "boom")
}

func TestMemoryRunMigrations_NoOp(t *testing.T) {
	assert.NoError(t, NewMemoryRepositoryManager().RunMigrations(context.Background(), nil))
}

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		db, m, err := Open(DriverMemory, "", logging.Nop{})
		require.NoError(t, err)
		assert.Nil(t, db)
		assert.IsType(t, &MemoryRepositoryManager{}, m)
	})

	t.Run("sqlite", func(t *testing.T) {
		db, m, err := Open(DriverSQLite, ":memory:", logging.Nop{})
		require.NoError(t, err)
		defer db.Close()
		assert.IsType(t, &SQLiteRepositoryManager{}, m)
	})

	t.Run("postgres open error", func(t *testing.T) {
		orig := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			assert.Equal(t, "pgx", driverName)
			return nil, errors.New("bad dsn")
		}
		t.Cleanup(func() { sqlOpen = orig })

		_, _, err := Open(DriverPostgres, "postgres://x", logging.Nop{})
		assert.ErrorContains(t, err, "db open error: bad dsn")
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := Open("oracle", "", logging.Nop{})
		assert.ErrorContains(t, err, `unknown database driver "oracle"`)
	})
}
