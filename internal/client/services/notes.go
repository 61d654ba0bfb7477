// Package services contains the application services of the notesync CLI.
// NoteService edits the local store offline and reconciles it with the
// server on push and pull.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/notesync/internal/api"
	"github.com/dmitrijs2005/notesync/internal/client/client"
	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/client/repositories/conflicts"
	"github.com/dmitrijs2005/notesync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notesync/internal/client/repositories/notes"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/logging"
	sm "github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/google/uuid"
)

var (
	ErrNoteDeleted       = errors.New("note is deleted")
	ErrInvalidResolution = errors.New("resolution must be server or client")
	ErrResultMismatch    = errors.New("server results do not match pushed notes")
)

// NoteService defines the note operations of the CLI.
//
// Add, Edit and Delete work offline and mark the note dirty. Push sends the
// dirty notes and applies the results in one local transaction. Conflicts
// stay recorded until Resolve picks a side.
type NoteService interface {
	Add(ctx context.Context, title, content string) (*models.LocalNote, error)
	Edit(ctx context.Context, id string, title, content *string) (*models.LocalNote, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.LocalNote, error)
	List(ctx context.Context, includeDeleted bool) ([]*models.LocalNote, error)
	Push(ctx context.Context) (*PushReport, error)
	Pull(ctx context.Context) (*PullReport, error)
	Conflicts(ctx context.Context) ([]*models.Conflict, error)
	Resolve(ctx context.Context, id string, keep models.Resolution) (*models.LocalNote, error)
	Snapshot(ctx context.Context) (*api.SnapshotResponse, error)
	Status(ctx context.Context) (*Status, error)
}

type PushReport struct {
	Pushed    int
	Accepted  int
	Conflicts int
}

type PullReport struct {
	Fetched int
	Updated int
	// Skipped counts server notes not applied because the local copy has
	// unpushed changes.
	Skipped int
}

// Status summarises the local store and server reachability.
type Status struct {
	Online     bool
	PingError  error
	Notes      int
	Dirty      int
	Conflicts  int
	LastPushAt string
	LastPullAt string
}

type noteService struct {
	client client.Client
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewNoteService constructs a NoteService over the local database db. The
// client is only used by the operations that reach the server.
func NewNoteService(c client.Client, db *sql.DB, logger logging.Logger) NoteService {
	return &noteService{client: c, db: db, logger: logger.With("module", "notes"), now: time.Now}
}

func (s *noteService) nowMillis() int64 {
	return s.now().UnixMilli()
}

func (s *noteService) Add(ctx context.Context, title, content string) (*models.LocalNote, error) {
	ts := s.nowMillis()
	n := &models.LocalNote{
		Note: sm.Note{
			ID:        uuid.NewString(),
			Title:     title,
			Content:   content,
			CreatedAt: ts,
			UpdatedAt: ts,
		},
		Dirty: true,
	}

	if err := notes.NewSQLiteRepository(s.db).Save(ctx, n); err != nil {
		return nil, fmt.Errorf("error saving note: %w", err)
	}

	s.logger.Debug(ctx, "note added", "id", n.ID)
	return n, nil
}

// Edit changes the given fields. The version is left at the one last seen
// from the server so the push is judged against it.
func (s *noteService) Edit(ctx context.Context, id string, title, content *string) (*models.LocalNote, error) {
	repo := notes.NewSQLiteRepository(s.db)

	n, err := repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving note %s: %w", id, err)
	}
	if n.Deleted {
		return nil, fmt.Errorf("error editing note %s: %w", id, ErrNoteDeleted)
	}

	if title != nil {
		n.Title = *title
	}
	if content != nil {
		n.Content = *content
	}
	n.UpdatedAt = s.nowMillis()
	n.Dirty = true

	if err := repo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("error saving note %s: %w", id, err)
	}
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, id string) error {
	repo := notes.NewSQLiteRepository(s.db)

	n, err := repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("error retrieving note %s: %w", id, err)
	}
	if n.Deleted {
		return nil
	}

	n.Deleted = true
	n.UpdatedAt = s.nowMillis()
	n.Dirty = true

	if err := repo.Save(ctx, n); err != nil {
		return fmt.Errorf("error deleting note %s: %w", id, err)
	}
	return nil
}

func (s *noteService) Get(ctx context.Context, id string) (*models.LocalNote, error) {
	n, err := notes.NewSQLiteRepository(s.db).Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving note %s: %w", id, err)
	}
	return n, nil
}

func (s *noteService) List(ctx context.Context, includeDeleted bool) ([]*models.LocalNote, error) {
	all, err := notes.NewSQLiteRepository(s.db).List(ctx, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return all, nil
}

func (s *noteService) Push(ctx context.Context) (*PushReport, error) {
	dirty, err := notes.NewSQLiteRepository(s.db).ListDirty(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving dirty notes: %w", err)
	}

	report := &PushReport{Pushed: len(dirty)}
	if len(dirty) == 0 {
		return report, nil
	}

	batch := make([]sm.Note, 0, len(dirty))
	for _, n := range dirty {
		batch = append(batch, n.Note)
	}

	results, err := s.client.Sync(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("error pushing notes: %w", err)
	}
	if len(results) != len(batch) {
		return nil, fmt.Errorf("%w: got %d results for %d notes", ErrResultMismatch, len(results), len(batch))
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		noteRepo := notes.NewSQLiteRepository(tx)
		conflictRepo := conflicts.NewSQLiteRepository(tx)

		for i, r := range results {
			accepted, err := s.applyResult(ctx, noteRepo, conflictRepo, batch[i].ID, r)
			if err != nil {
				return fmt.Errorf("result %d of %d: %w", i+1, len(results), err)
			}
			if accepted {
				report.Accepted++
			} else {
				report.Conflicts++
			}
		}

		return metadata.NewSQLiteRepository(tx).Set(ctx, metadata.KeyLastPushAt, strconv.FormatInt(s.nowMillis(), 10))
	})
	if err != nil {
		return nil, fmt.Errorf("error applying push results: %w", err)
	}

	s.logger.Info(ctx, "push finished", "pushed", report.Pushed, "accepted", report.Accepted, "conflicts", report.Conflicts)
	return report, nil
}

// applyResult stores the server's verdict on one pushed note and reports
// whether it was accepted.
func (s *noteService) applyResult(ctx context.Context, noteRepo notes.Repository, conflictRepo conflicts.Repository, id string, r api.Result) (bool, error) {
	switch r.Type {
	case api.ResultAccepted:
		if r.Note == nil || r.Note.ID != id {
			return false, fmt.Errorf("%w: accepted result for note %s", ErrResultMismatch, id)
		}
		if err := noteRepo.Save(ctx, &models.LocalNote{Note: *r.Note}); err != nil {
			return false, err
		}
		return true, conflictRepo.Delete(ctx, id)

	case api.ResultConflict:
		if r.ClientNote == nil || r.ServerNote == nil || r.ServerNote.ID != id {
			return false, fmt.Errorf("%w: conflict result for note %s", ErrResultMismatch, id)
		}
		s.logger.Warn(ctx, "push conflict", "id", id, "client_version", r.ClientNote.Version, "server_version", r.ServerNote.Version)
		return false, conflictRepo.Save(ctx, &models.Conflict{
			ID:         id,
			ClientNote: *r.ClientNote,
			ServerNote: *r.ServerNote,
			DetectedAt: s.nowMillis(),
		})

	default:
		return false, fmt.Errorf("%w: unknown result type %q", ErrResultMismatch, r.Type)
	}
}

// Pull copies server notes into the local store. Notes with unpushed local
// changes are left alone; the next push settles them.
func (s *noteService) Pull(ctx context.Context) (*PullReport, error) {
	remote, err := s.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error pulling notes: %w", err)
	}

	report := &PullReport{Fetched: len(remote)}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := notes.NewSQLiteRepository(tx)

		for _, n := range remote {
			local, err := repo.Get(ctx, n.ID)
			switch {
			case errors.Is(err, common.ErrorNotFound):
			case err != nil:
				return err
			case local.Dirty:
				report.Skipped++
				continue
			case local.Note == *n:
				continue
			}

			if err := repo.Save(ctx, &models.LocalNote{Note: *n}); err != nil {
				return err
			}
			report.Updated++
		}

		return metadata.NewSQLiteRepository(tx).Set(ctx, metadata.KeyLastPullAt, strconv.FormatInt(s.nowMillis(), 10))
	})
	if err != nil {
		return nil, fmt.Errorf("error applying pulled notes: %w", err)
	}

	s.logger.Info(ctx, "pull finished", "fetched", report.Fetched, "updated", report.Updated, "skipped", report.Skipped)
	return report, nil
}

func (s *noteService) Conflicts(ctx context.Context) ([]*models.Conflict, error) {
	all, err := conflicts.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing conflicts: %w", err)
	}
	return all, nil
}

// Resolve settles an open conflict. KeepServer replaces the local note with
// the server's copy. KeepClient rebases the local edit onto the server
// version so the next push is accepted.
func (s *noteService) Resolve(ctx context.Context, id string, keep models.Resolution) (*models.LocalNote, error) {
	if !keep.Valid() {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidResolution, keep)
	}

	var resolved *models.LocalNote
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		conflictRepo := conflicts.NewSQLiteRepository(tx)
		noteRepo := notes.NewSQLiteRepository(tx)

		c, err := conflictRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		switch keep {
		case models.KeepServer:
			resolved = &models.LocalNote{Note: c.ServerNote}
		case models.KeepClient:
			local, err := noteRepo.Get(ctx, id)
			if errors.Is(err, common.ErrorNotFound) {
				local = &models.LocalNote{Note: c.ClientNote}
			} else if err != nil {
				return err
			}
			local.Version = c.ServerNote.Version
			local.UpdatedAt = s.nowMillis()
			local.Dirty = true
			resolved = local
		}

		if err := noteRepo.Save(ctx, resolved); err != nil {
			return err
		}
		return conflictRepo.Delete(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("error resolving conflict %s: %w", id, err)
	}

	s.logger.Info(ctx, "conflict resolved", "id", id, "keep", string(keep))
	return resolved, nil
}

func (s *noteService) Snapshot(ctx context.Context) (*api.SnapshotResponse, error) {
	res, err := s.client.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error taking snapshot: %w", err)
	}
	return res, nil
}

func (s *noteService) Status(ctx context.Context) (*Status, error) {
	st := &Status{}

	if err := s.client.Ping(ctx); err != nil {
		st.PingError = err
	} else {
		st.Online = true
	}

	all, err := notes.NewSQLiteRepository(s.db).List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	st.Notes = len(all)

	dirty, err := notes.NewSQLiteRepository(s.db).ListDirty(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing dirty notes: %w", err)
	}
	st.Dirty = len(dirty)

	open, err := conflicts.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing conflicts: %w", err)
	}
	st.Conflicts = len(open)

	meta, err := metadata.NewSQLiteRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading metadata: %w", err)
	}
	st.LastPushAt = meta[metadata.KeyLastPushAt]
	st.LastPullAt = meta[metadata.KeyLastPullAt]

	return st, nil
}
