package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
)

// MemoryRepositoryManager hands out one shared in-memory repository,
// whatever DBTX it is given. It exists for tests and throwaway servers.
type MemoryRepositoryManager struct {
	notes *notes.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{notes: notes.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Notes(dbx.DBTX) notes.Repository {
	return m.notes
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
