// Package server wires storage, services and transports together and runs
// the HTTP and gRPC servers until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/config"
	"github.com/dmitrijs2005/notesync/internal/server/httpapi"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notesync/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/notesync/internal/server/grpc"
)

const migrationTimeout = 30 * time.Second

var openDatabase = repomanager.Open

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	noteService     *services.NoteService
	snapshotService *services.SnapshotService
}

// NewApp connects to the configured database and applies migrations.
func NewApp(c *config.Config) (*App, error) {
	return newApp(c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func newApp(c *config.Config, logger logging.Logger) (*App, error) {
	db, rm, err := openDatabase(c.DatabaseDriver, c.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	if err := rm.RunMigrations(ctx, db); err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	logger.Info(ctx, "Storage ready", "driver", c.DatabaseDriver,
		"strict_versioning", c.StrictVersioning, "transactional_batches", c.TransactionalBatches)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		noteService:     services.NewNoteService(db, rm, c, logger),
		snapshotService: services.NewSnapshotService(db, rm, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		sig := <-sigs
		app.logger.Info(context.Background(), "Signal caught", "sig", sig.String())
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives, or either server
// fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	hs := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.noteService, app.snapshotService,
		app.config.SecretKey, app.config.ShutdownTimeout)
	g.Go(func() error { return hs.Run(gctx) })

	if app.config.GRPCAddr != "" {
		s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.noteService, app.snapshotService, app.config.SecretKey)
		g.Go(func() error { return s.Run(gctx) })
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server failed", "err", err)
	}

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close failed", "err", cerr)
		}
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
