// Package models defines server-side data models persisted in the database
// and produced by reconciliation.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/common"
)

// MaxSafeInteger is the largest integer a JSON number or a protobuf Struct
// value carries without rounding.
const MaxSafeInteger = 1<<53 - 1

// Note is the unit of reconciliation. Timestamps are unix milliseconds.
type Note struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Version is the optimistic-concurrency token. On a client note it is the
	// version the client last saw, never the version to store next.
	Version   int64 `json:"version"`
	CreatedAt int64 `json:"createdAt"`
	// UpdatedAt on the authoritative record is always assigned by the server.
	UpdatedAt int64 `json:"updatedAt"`
	// Deleted marks a tombstone. Notes are never physically removed.
	Deleted bool `json:"deleted"`
}

// Validate checks the shape of a client-submitted note.
func (n *Note) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: note id is empty", common.ErrInvalidPayload)
	}
	if n.Version < 0 {
		return fmt.Errorf("%w: note %s has negative version %d", common.ErrInvalidPayload, n.ID, n.Version)
	}
	if n.Version > MaxSafeInteger {
		return fmt.Errorf("%w: note %s version %d out of range", common.ErrInvalidPayload, n.ID, n.Version)
	}
	if n.CreatedAt < 0 || n.UpdatedAt < 0 {
		return fmt.Errorf("%w: note %s has negative timestamp", common.ErrInvalidPayload, n.ID)
	}
	if n.CreatedAt > MaxSafeInteger || n.UpdatedAt > MaxSafeInteger {
		return fmt.Errorf("%w: note %s timestamp out of range", common.ErrInvalidPayload, n.ID)
	}
	return nil
}
