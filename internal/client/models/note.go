// Package models defines the client's local records.
package models

import (
	sm "github.com/dmitrijs2005/notesync/internal/server/models"
)

// LocalNote is a note as stored on this device. Dirty marks local changes
// the server has not accepted yet. Version stays at the version last seen
// from the server until a push is accepted.
type LocalNote struct {
	sm.Note
	Dirty bool
}

// Conflict keeps both sides of a rejected push until the user resolves it.
type Conflict struct {
	ID         string
	ClientNote sm.Note
	ServerNote sm.Note
	DetectedAt int64
}

// Resolution names the side a conflict is resolved in favour of.
type Resolution string

const (
	KeepServer Resolution = "server"
	KeepClient Resolution = "client"
)

func (r Resolution) Valid() bool {
	return r == KeepServer || r == KeepClient
}
