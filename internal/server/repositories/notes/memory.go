package notes

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/server/models"
)

// MemoryRepository keeps notes in a map. Values are copied on the way in and
// out so callers cannot mutate stored records.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]models.Note
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{notes: make(map[string]models.Note)}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &n, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notes[n.ID]; ok {
		return fmt.Errorf("failed to insert note: duplicate id %q", n.ID)
	}
	r.notes[n.ID] = *n
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.update(n)
	return nil
}

func (r *MemoryRepository) UpdateIfVersion(ctx context.Context, n *models.Note, expected int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.notes[n.ID]
	if !ok || current.Version != expected {
		return common.ErrVersionConflict
	}
	r.update(n)
	return nil
}

// update mirrors the SQL UPDATE: missing ids are a no-op and created_at
// keeps its stored value.
func (r *MemoryRepository) update(n *models.Note) {
	current, ok := r.notes[n.ID]
	if !ok {
		return
	}
	updated := *n
	updated.CreatedAt = current.CreatedAt
	r.notes[n.ID] = updated
}

func (r *MemoryRepository) SelectAll(ctx context.Context) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Note, 0, len(r.notes))
	for _, n := range r.notes {
		n := n
		result = append(result, &n)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
