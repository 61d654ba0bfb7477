// Package conflicts stores pushes the server rejected, keyed by note id.
package conflicts

import (
	"context"

	"github.com/dmitrijs2005/notesync/internal/client/models"
)

type Repository interface {
	// Save records a conflict, replacing any earlier one for the same note.
	Save(ctx context.Context, c *models.Conflict) error
	// Get returns common.ErrorNotFound when the note has no open conflict.
	Get(ctx context.Context, id string) (*models.Conflict, error)
	List(ctx context.Context) ([]*models.Conflict, error)
	Delete(ctx context.Context, id string) error
}
