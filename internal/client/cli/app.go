package cli

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"

	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/config"
	"github.com/dmitrijs2005/notesync/internal/client/services"
	"github.com/dmitrijs2005/notesync/internal/logging"
)

// Seams for tests.
var (
	newClient    = client.New
	initDatabase = client.InitDatabase
)

// App holds what the commands share: configuration, the logger and the
// lazily opened note service.
type App struct {
	config  *config.Config
	logger  logging.Logger
	verbose bool

	db     *sql.DB
	client client.Client
	notes  services.NoteService
}

func NewApp(c *config.Config) *App {
	return &App{config: c, logger: logging.Nop{}}
}

func (a *App) setLogger(w io.Writer) {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = logging.NewTextLogger(w, level)
}

// noteService opens the local database and the server client on first use.
func (a *App) noteService(ctx context.Context) (services.NoteService, error) {
	if a.notes != nil {
		return a.notes, nil
	}

	db, err := initDatabase(ctx, a.config.DatabasePath, a.logger)
	if err != nil {
		return nil, err
	}

	c, err := newClient(a.config)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a.db, a.client = db, c
	a.notes = services.NewNoteService(c, db, a.logger)
	a.logger.Debug(ctx, "opened local store", "path", a.config.DatabasePath, "transport", a.config.Transport)
	return a.notes, nil
}

// Close releases the client and the database if they were opened.
func (a *App) Close() error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	a.notes, a.client, a.db = nil, nil, nil
	return errors.Join(errs...)
}
