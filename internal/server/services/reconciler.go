package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/logging"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
)

// Reconciler decides whether a client's note becomes the authoritative
// record. It performs one storage read and at most one write per note and
// holds no locks: two concurrent batches editing the same id may both read
// version N and both write N+1 (a lost update) unless WithCompareAndSwap is
// set and the repository supports it.
type Reconciler struct {
	repo   notes.Repository
	now    func() time.Time
	logger logging.Logger
	cas    bool
}

type ReconcilerOption func(*Reconciler)

// WithClock overrides the server clock used for UpdatedAt.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) { r.now = now }
}

func WithLogger(l logging.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.logger = l.With("module", "reconciler") }
}

// WithCompareAndSwap makes accepted updates conditional on the stored
// version when the repository implements notes.VersionedUpdater. A lost
// race is reported as a Conflict against the record that won.
func WithCompareAndSwap() ReconcilerOption {
	return func(r *Reconciler) { r.cas = true }
}

func NewReconciler(repo notes.Repository, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{repo: repo, now: time.Now, logger: logging.Nop{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile applies one client note against storage.
func (r *Reconciler) Reconcile(ctx context.Context, clientNote models.Note) (models.Outcome, error) {
	serverNote, err := r.repo.FindByID(ctx, clientNote.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error finding note %s: %w", clientNote.ID, err)
	}

	// The server has never seen this note: store it as-is, client version included.
	if serverNote == nil {
		created := clientNote
		if err := r.repo.Insert(ctx, &created); err != nil {
			return nil, fmt.Errorf("error inserting note %s: %w", clientNote.ID, err)
		}
		r.logger.Debug(ctx, "note created", "id", created.ID, "version", created.Version)
		return models.Created{Note: created}, nil
	}

	switch {
	case clientNote.Version == serverNote.Version:
		return r.acceptUpdate(ctx, clientNote, *serverNote)

	case clientNote.Version < serverNote.Version:
		r.logger.Debug(ctx, "stale client version", "id", clientNote.ID,
			"client_version", clientNote.Version, "server_version", serverNote.Version)
		return models.Conflict{ClientNote: clientNote, ServerNote: *serverNote}, nil

	case clientNote.Version > serverNote.Version:
		// The client claims to know a version the server never issued.
		r.logger.Warn(ctx, "client version ahead of server", "id", clientNote.ID,
			"client_version", clientNote.Version, "server_version", serverNote.Version)
		return models.Conflict{ClientNote: clientNote, ServerNote: *serverNote}, nil
	}

	return nil, fmt.Errorf("%w: note %s client version %d server version %d",
		common.ErrUnhandledSyncCase, clientNote.ID, clientNote.Version, serverNote.Version)
}

func (r *Reconciler) acceptUpdate(ctx context.Context, clientNote, serverNote models.Note) (models.Outcome, error) {
	updated := clientNote
	updated.Version = serverNote.Version + 1
	updated.UpdatedAt = r.now().UnixMilli()
	updated.CreatedAt = serverNote.CreatedAt

	if vu, ok := r.repo.(notes.VersionedUpdater); ok && r.cas {
		err := vu.UpdateIfVersion(ctx, &updated, serverNote.Version)
		if errors.Is(err, common.ErrVersionConflict) {
			return r.lostRace(ctx, clientNote)
		}
		if err != nil {
			return nil, fmt.Errorf("error updating note %s: %w", clientNote.ID, err)
		}
	} else if err := r.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("error updating note %s: %w", clientNote.ID, err)
	}

	r.logger.Debug(ctx, "note updated", "id", updated.ID, "version", updated.Version)
	return models.Updated{Note: updated}, nil
}

// lostRace re-reads the record another writer stored between our read and
// our conditional write.
func (r *Reconciler) lostRace(ctx context.Context, clientNote models.Note) (models.Outcome, error) {
	current, err := r.repo.FindByID(ctx, clientNote.ID)
	if err != nil {
		return nil, fmt.Errorf("error finding note %s: %w", clientNote.ID, err)
	}
	r.logger.Info(ctx, "concurrent update detected", "id", clientNote.ID, "server_version", current.Version)
	return models.Conflict{ClientNote: clientNote, ServerNote: *current}, nil
}

// ReconcileAll reconciles notes one at a time in input order. The result has
// one outcome per input at the same index. A later note with a repeated id
// sees the effect of the earlier one. The first error aborts the batch and no
// partial results are returned.
func (r *Reconciler) ReconcileAll(ctx context.Context, clientNotes []models.Note) ([]models.Outcome, error) {
	results := make([]models.Outcome, 0, len(clientNotes))

	for i, n := range clientNotes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, err := r.Reconcile(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("note %d of %d: %w", i+1, len(clientNotes), err)
		}
		results = append(results, outcome)
	}

	return results, nil
}
