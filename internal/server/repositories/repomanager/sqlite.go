package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/migrations"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct {
	logger logging.Logger
}

func NewSQLiteRepositoryManager(logger logging.Logger) *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{logger: logger}
}

func (m *SQLiteRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, m.logger, "sqlite3", migrations.SQLiteDir)
}
