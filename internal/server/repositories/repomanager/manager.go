// Package repomanager vends note repositories for the configured database
// driver and runs the embedded goose migrations for it.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
)

// Supported values of Config.DatabaseDriver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// RepositoryManager binds repositories to a DBTX (*sql.DB or *sql.Tx) and
// owns schema provisioning.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Notes(db dbx.DBTX) notes.Repository
}

var sqlOpen = sql.Open

// Open connects to the configured driver. The returned *sql.DB is nil for
// the memory driver. Migration output goes to logger.
func Open(driver, dsn string, logger logging.Logger) (*sql.DB, RepositoryManager, error) {
	switch driver {
	case DriverPostgres:
		db, err := sqlOpen("pgx", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("db open error: %w", err)
		}
		return db, NewPostgresRepositoryManager(logger), nil
	case DriverSQLite:
		db, err := sqlOpen("sqlite", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("db open error: %w", err)
		}
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		return db, NewSQLiteRepositoryManager(logger), nil
	case DriverMemory:
		return nil, NewMemoryRepositoryManager(), nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
