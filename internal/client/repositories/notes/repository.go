// Package notes stores the client's local copy of every note.
package notes

import (
	"context"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the id is unknown.
	Get(ctx context.Context, id string) (*models.LocalNote, error)
	// Save inserts the note or replaces every field of an existing one.
	Save(ctx context.Context, note *models.LocalNote) error
	// List returns notes ordered by creation time. Tombstones are included
	// only when includeDeleted is set.
	List(ctx context.Context, includeDeleted bool) ([]*models.LocalNote, error)
	// ListDirty returns notes with unpushed changes, tombstones included.
	ListDirty(ctx context.Context) ([]*models.LocalNote, error)
}
