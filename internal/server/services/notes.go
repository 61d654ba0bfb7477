package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/logging"
	sc "github.com/dmitrijs2005/notesync/internal/server/config"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/repomanager"
)

// NoteService is what the transports call. It binds a Reconciler to the
// right storage handle for each request.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
	now         func() time.Time
}

// NewNoteService wires the service. db may be nil for the memory driver.
func NewNoteService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config, logger logging.Logger) *NoteService {
	return &NoteService{
		db:          db,
		repomanager: repomanager,
		config:      config,
		logger:      logger.With("module", "notes"),
		now:         time.Now,
	}
}

func (s *NoteService) reconciler(repo notes.Repository) *Reconciler {
	opts := []ReconcilerOption{WithClock(s.now), WithLogger(s.logger)}
	if s.config.StrictVersioning {
		opts = append(opts, WithCompareAndSwap())
	}
	return NewReconciler(repo, opts...)
}

// Sync reconciles a batch. With transactional batches enabled on a SQL
// driver, a failure rolls back every note of the batch.
func (s *NoteService) Sync(ctx context.Context, batch []models.Note) ([]models.Outcome, error) {
	var results []models.Outcome

	if s.db != nil && s.config.TransactionalBatches {
		err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			var err error
			results, err = s.reconciler(s.repomanager.Notes(tx)).ReconcileAll(ctx, batch)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("error syncing notes: %w", err)
		}
	} else {
		var err error
		results, err = s.reconciler(s.repomanager.Notes(s.db)).ReconcileAll(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("error syncing notes: %w", err)
		}
	}

	accepted := 0
	for _, r := range results {
		if r.Accepted() {
			accepted++
		}
	}
	s.logger.Info(ctx, "batch reconciled", "notes", len(batch), "accepted", accepted, "conflicts", len(results)-accepted)

	return results, nil
}

// List returns every stored note, tombstones included.
func (s *NoteService) List(ctx context.Context) ([]*models.Note, error) {
	all, err := s.repomanager.Notes(s.db).SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return all, nil
}

// Get returns one note or common.ErrorNotFound.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	n, err := s.repomanager.Notes(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting note %s: %w", id, err)
	}
	return n, nil
}
