// Package notes provides the storage collaborator of the reconciler:
// PostgreSQL, SQLite and in-memory repositories of authoritative notes.
package notes

import (
	"context"

	"github.com/dmitrijs2005/notesync/internal/server/models"
)

// Repository looks notes up by id and persists inserts and updates.
// Repositories never decide what becomes authoritative.
type Repository interface {
	// FindByID returns common.ErrorNotFound when no record exists.
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Insert(ctx context.Context, note *models.Note) error
	// Update replaces every mutable field by id. CreatedAt is left untouched.
	Update(ctx context.Context, note *models.Note) error
	SelectAll(ctx context.Context) ([]*models.Note, error)
}

// VersionedUpdater is implemented by repositories that can write a note only
// if the stored version still equals expected. A lost race yields
// common.ErrVersionConflict.
type VersionedUpdater interface {
	UpdateIfVersion(ctx context.Context, note *models.Note, expected int64) error
}
