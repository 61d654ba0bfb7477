package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/client/migrations"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// RunMigrations applies the embedded client migrations to db, reporting
// progress through logger.
func RunMigrations(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	goose.SetLogger(logging.NewPrintfLogger(logger.With("module", "migrations")))
	goose.SetBaseFS(migrations.Migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, migrations.Dir)
}

// InitDatabase opens the local database at dsn and brings its schema up
// to date.
func InitDatabase(ctx context.Context, dsn string, logger logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error migrating local database: %w", err)
	}
	return db, nil
}
