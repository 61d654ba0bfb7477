package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/migrations"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct {
	logger logging.Logger
}

func NewPostgresRepositoryManager(logger logging.Logger) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{logger: logger}
}

// Notes returns a notes.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewPostgresRepository(db)
}

// RunMigrations applies the embedded postgres migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, m.logger, "pgx", migrations.PostgresDir)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, logger logging.Logger, dialect, dir string) error {
	goose.SetLogger(logging.NewPrintfLogger(logger.With("module", "migrations")))
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, dir)
}
