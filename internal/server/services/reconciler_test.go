package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/server/models"
	"github.com/dmitrijs2005/notesync/internal/server/repositories/notes"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func fixedClock() time.Time { return fixedNow }

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// countingRepo wraps a repository and records writes.
type countingRepo struct {
	notes.Repository
	inserts int
	updates int
}

func (r *countingRepo) Insert(ctx context.Context, n *models.Note) error {
	r.inserts++
	return r.Repository.Insert(ctx, n)
}

func (r *countingRepo) Update(ctx context.Context, n *models.Note) error {
	r.updates++
	return r.Repository.Update(ctx, n)
}

// failingRepo fails selected operations and otherwise delegates.
type failingRepo struct {
	notes.Repository
	findErr   error
	insertErr error
	updateErr error
	failOnID  string
}

func (r *failingRepo) FindByID(ctx context.Context, id string) (*models.Note, error) {
	if r.findErr != nil && (r.failOnID == "" || r.failOnID == id) {
		return nil, r.findErr
	}
	return r.Repository.FindByID(ctx, id)
}

func (r *failingRepo) Insert(ctx context.Context, n *models.Note) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	return r.Repository.Insert(ctx, n)
}

func (r *failingRepo) Update(ctx context.Context, n *models.Note) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.Repository.Update(ctx, n)
}

// racingRepo simulates another writer committing between our read and our
// conditional write.
type racingRepo struct {
	*notes.MemoryRepository
	winner models.Note
	raced  bool
}

func (r *racingRepo) UpdateIfVersion(ctx context.Context, n *models.Note, expected int64) error {
	if !r.raced {
		r.raced = true
		if err := r.MemoryRepository.Update(ctx, &r.winner); err != nil {
			return err
		}
	}
	return r.MemoryRepository.UpdateIfVersion(ctx, n, expected)
}

func seed(t *testing.T, repo notes.Repository, ns ...models.Note) {
	t.Helper()
	for _, n := range ns {
		n := n
		require.NoError(t, repo.Insert(context.Background(), &n))
	}
}

func stored(t *testing.T, repo notes.Repository, id string) models.Note {
	t.Helper()
	n, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return *n
}

func TestReconcile_AbsentNoteIsCreatedVerbatim(t *testing.T) {
	repo := notes.NewMemoryRepository()
	r := NewReconciler(repo, WithClock(fixedClock))

	client := models.Note{ID: "n1", Title: "A", Content: "x", Version: 5, CreatedAt: 10, UpdatedAt: 20}

	out, err := r.Reconcile(context.Background(), client)
	require.NoError(t, err)

	created, ok := out.(models.Created)
	require.True(t, ok, "want Created, got %T", out)
	assert.Equal(t, client, created.Note)
	assert.True(t, out.Accepted())
	assert.Equal(t, client, stored(t, repo, "n1"), "client version is stored as-is")
}

func TestReconcile_EqualVersionIsUpdated(t *testing.T) {
	repo := notes.NewMemoryRepository()
	seed(t, repo, models.Note{ID: "n1", Title: "A", Content: "x", Version: 3, CreatedAt: 100, UpdatedAt: 200})
	r := NewReconciler(repo, WithClock(fixedClock))

	client := models.Note{ID: "n1", Title: "B", Content: "y", Version: 3, CreatedAt: 100, UpdatedAt: 150, Deleted: true}

	out, err := r.Reconcile(context.Background(), client)
	require.NoError(t, err)

	updated, ok := out.(models.Updated)
	require.True(t, ok, "want Updated, got %T", out)

	want := models.Note{ID: "n1", Title: "B", Content: "y", Version: 4, CreatedAt: 100,
		UpdatedAt: fixedNow.UnixMilli(), Deleted: true}
	if diff := cmp.Diff(want, updated.Note); diff != "" {
		t.Fatalf("updated note mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, stored(t, repo, "n1"))
}

func TestReconcile_UpdateIgnoresClientUpdatedAt(t *testing.T) {
	repo := notes.NewMemoryRepository()
	seed(t, repo, models.Note{ID: "n1", Version: 0})
	r := NewReconciler(repo, WithClock(fixedClock))

	out, err := r.Reconcile(context.Background(), models.Note{ID: "n1", Version: 0, UpdatedAt: 9_999_999_999_999})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), out.(models.Updated).Note.UpdatedAt)
	assert.Equal(t, int64(1), out.(models.Updated).Note.Version)
}

func TestReconcile_VersionMismatchIsConflictWithoutWrite(t *testing.T) {
	server := models.Note{ID: "n1", Title: "S", Content: "s", Version: 5, CreatedAt: 1, UpdatedAt: 2}

	tests := []struct {
		name          string
		clientVersion int64
	}{
		{name: "client behind", clientVersion: 4},
		{name: "client far behind", clientVersion: 0},
		{name: "client ahead", clientVersion: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := notes.NewMemoryRepository()
			seed(t, mem, server)
			repo := &countingRepo{Repository: mem}
			r := NewReconciler(repo, WithClock(fixedClock))

			client := models.Note{ID: "n1", Title: "C", Content: "c", Version: tt.clientVersion}

			out, err := r.Reconcile(context.Background(), client)
			require.NoError(t, err)

			conflict, ok := out.(models.Conflict)
			require.True(t, ok, "want Conflict, got %T", out)
			assert.False(t, out.Accepted())
			assert.Equal(t, client, conflict.ClientNote)
			assert.Equal(t, server, conflict.ServerNote)
			assert.Zero(t, repo.inserts)
			assert.Zero(t, repo.updates)
			assert.Equal(t, server, stored(t, mem, "n1"))
		})
	}
}

func TestReconcile_ConflictIsIdempotent(t *testing.T) {
	repo := notes.NewMemoryRepository()
	seed(t, repo, models.Note{ID: "n1", Version: 2})
	r := NewReconciler(repo)

	client := models.Note{ID: "n1", Title: "stale", Version: 1}

	first, err := r.Reconcile(context.Background(), client)
	require.NoError(t, err)
	second, err := r.Reconcile(context.Background(), client)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReconcile_StorageErrorsPropagate(t *testing.T) {
	boom := errBoom{}

	tests := []struct {
		name string
		repo func(mem notes.Repository) notes.Repository
	}{
		{name: "find", repo: func(mem notes.Repository) notes.Repository {
			return &failingRepo{Repository: mem, findErr: boom}
		}},
		{name: "insert", repo: func(mem notes.Repository) notes.Repository {
			return &failingRepo{Repository: mem, insertErr: boom}
		}},
		{name: "update", repo: func(mem notes.Repository) notes.Repository {
			return &failingRepo{Repository: mem, updateErr: boom}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := notes.NewMemoryRepository()
			seed(t, mem, models.Note{ID: "existing", Version: 1})
			r := NewReconciler(tt.repo(mem))

			id := "existing"
			if tt.name == "insert" {
				id = "new"
			}

			out, err := r.Reconcile(context.Background(), models.Note{ID: id, Version: 1})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestReconcile_CompareAndSwapReportsLostRace(t *testing.T) {
	mem := notes.NewMemoryRepository()
	seed(t, mem, models.Note{ID: "n1", Title: "v1", Version: 1, CreatedAt: 5})
	winner := models.Note{ID: "n1", Title: "winner", Version: 2, CreatedAt: 5, UpdatedAt: 77}
	repo := &racingRepo{MemoryRepository: mem, winner: winner}

	r := NewReconciler(repo, WithClock(fixedClock), WithCompareAndSwap())

	client := models.Note{ID: "n1", Title: "loser", Version: 1}
	out, err := r.Reconcile(context.Background(), client)
	require.NoError(t, err)

	conflict, ok := out.(models.Conflict)
	require.True(t, ok, "want Conflict, got %T", out)
	assert.Equal(t, client, conflict.ClientNote)
	assert.Equal(t, winner, conflict.ServerNote)
	assert.Equal(t, winner, stored(t, mem, "n1"))
}

func TestReconcile_CompareAndSwapAcceptsWhenUncontended(t *testing.T) {
	repo := notes.NewMemoryRepository()
	seed(t, repo, models.Note{ID: "n1", Version: 1})
	r := NewReconciler(repo, WithClock(fixedClock), WithCompareAndSwap())

	out, err := r.Reconcile(context.Background(), models.Note{ID: "n1", Title: "new", Version: 1})
	require.NoError(t, err)
	require.IsType(t, models.Updated{}, out)
	assert.Equal(t, "new", stored(t, repo, "n1").Title)
	assert.Equal(t, int64(2), stored(t, repo, "n1").Version)
}

// Without compare-and-swap two writers that read the same version both
// succeed and the first edit is silently overwritten.
func TestReconcile_LostUpdateWithoutCompareAndSwap(t *testing.T) {
	repo := notes.NewMemoryRepository()
	seed(t, repo, models.Note{ID: "n1", Version: 1})

	gate := &gatedRepo{Repository: repo, reads: make(chan struct{}, 2), release: make(chan struct{})}
	r := NewReconciler(gate, WithClock(fixedClock))

	var wg sync.WaitGroup
	outcomes := make([]models.Outcome, 2)
	for i, title := range []string{"first", "second"} {
		wg.Add(1)
		go func(i int, title string) {
			defer wg.Done()
			out, err := r.Reconcile(context.Background(), models.Note{ID: "n1", Title: title, Version: 1})
			assert.NoError(t, err)
			outcomes[i] = out
		}(i, title)
	}

	// Let both goroutines read version 1 before either writes.
	<-gate.reads
	<-gate.reads
	close(gate.release)
	wg.Wait()

	for _, out := range outcomes {
		assert.IsType(t, models.Updated{}, out)
	}
	assert.Equal(t, int64(2), stored(t, repo, "n1").Version)
}

type gatedRepo struct {
	notes.Repository
	reads   chan struct{}
	release chan struct{}
}

func (g *gatedRepo) FindByID(ctx context.Context, id string) (*models.Note, error) {
	n, err := g.Repository.FindByID(ctx, id)
	g.reads <- struct{}{}
	<-g.release
	return n, err
}

func TestReconcileAll_ScenariosInInputOrder(t *testing.T) {
	repo := notes.NewMemoryRepository()
	seed(t, repo,
		models.Note{ID: "edit", Title: "old", Version: 2, CreatedAt: 1},
		models.Note{ID: "stale", Title: "server", Version: 4, CreatedAt: 1},
	)
	r := NewReconciler(repo, WithClock(fixedClock))

	batch := []models.Note{
		{ID: "fresh", Title: "new", Version: 0, CreatedAt: 9},
		{ID: "edit", Title: "changed", Version: 2},
		{ID: "stale", Title: "client", Version: 3},
	}

	results, err := r.ReconcileAll(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.IsType(t, models.Created{}, results[0])
	assert.Equal(t, batch[0], results[0].(models.Created).Note)

	require.IsType(t, models.Updated{}, results[1])
	assert.Equal(t, int64(3), results[1].(models.Updated).Note.Version)
	assert.Equal(t, int64(1), results[1].(models.Updated).Note.CreatedAt)

	require.IsType(t, models.Conflict{}, results[2])
	assert.Equal(t, "server", results[2].(models.Conflict).ServerNote.Title)
	assert.Equal(t, "client", results[2].(models.Conflict).ClientNote.Title)
}

func TestReconcileAll_EmptyBatch(t *testing.T) {
	r := NewReconciler(notes.NewMemoryRepository())

	results, err := r.ReconcileAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestReconcileAll_DuplicateIDsSeeEarlierWrites(t *testing.T) {
	repo := notes.NewMemoryRepository()
	r := NewReconciler(repo, WithClock(fixedClock))

	batch := []models.Note{
		{ID: "dup", Title: "one", Version: 0},
		{ID: "dup", Title: "two", Version: 0},
		{ID: "dup", Title: "three", Version: 0},
	}

	results, err := r.ReconcileAll(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.IsType(t, models.Created{}, results[0])
	require.IsType(t, models.Updated{}, results[1])
	assert.Equal(t, int64(1), results[1].(models.Updated).Note.Version)
	require.IsType(t, models.Conflict{}, results[2])
	assert.Equal(t, "two", results[2].(models.Conflict).ServerNote.Title)

	assert.Equal(t, "two", stored(t, repo, "dup").Title)
}

func TestReconcileAll_ErrorAbortsWithoutPartialResults(t *testing.T) {
	mem := notes.NewMemoryRepository()
	repo := &failingRepo{Repository: mem, findErr: errBoom{}, failOnID: "bad"}
	r := NewReconciler(repo)

	batch := []models.Note{
		{ID: "ok", Version: 0},
		{ID: "bad", Version: 0},
		{ID: "never", Version: 0},
	}

	results, err := r.ReconcileAll(context.Background(), batch)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, errBoom{}))
	assert.Contains(t, err.Error(), "note 2 of 3")

	// Earlier notes are not rolled back; later ones are never attempted.
	_, err = mem.FindByID(context.Background(), "ok")
	assert.NoError(t, err)
	_, err = mem.FindByID(context.Background(), "never")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestReconcileAll_StopsOnCancelledContext(t *testing.T) {
	repo := notes.NewMemoryRepository()
	r := NewReconciler(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.ReconcileAll(ctx, []models.Note{{ID: "n1"}})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, results)

	_, err = repo.FindByID(context.Background(), "n1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
