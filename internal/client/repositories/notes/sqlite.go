package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/dbx"
)

const noteColumns = `id, title, content, version, created_at, updated_at, deleted, dirty`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.LocalNote, error) {
	n := &models.LocalNote{}
	var deleted, dirty int
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &n.Version, &n.CreatedAt, &n.UpdatedAt, &deleted, &dirty); err != nil {
		return nil, err
	}
	n.Deleted = deleted != 0
	n.Dirty = dirty != 0
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.LocalNote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)

	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	return n, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, n *models.LocalNote) error {
	query := `
		INSERT INTO notes (` + noteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			version = excluded.version,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			deleted = excluded.deleted,
			dirty = excluded.dirty
	`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.Title, n.Content, n.Version, n.CreatedAt, n.UpdatedAt,
		boolToInt(n.Deleted), boolToInt(n.Dirty))
	if err != nil {
		return fmt.Errorf("failed to save note %s: %w", n.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, includeDeleted bool) ([]*models.LocalNote, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE deleted = 0 ORDER BY created_at, id`
	if includeDeleted {
		query = `SELECT ` + noteColumns + ` FROM notes ORDER BY created_at, id`
	}
	return r.query(ctx, query)
}

func (r *SQLiteRepository) ListDirty(ctx context.Context) ([]*models.LocalNote, error) {
	return r.query(ctx, `SELECT `+noteColumns+` FROM notes WHERE dirty = 1 ORDER BY created_at, id`)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.LocalNote, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := []*models.LocalNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return result, nil
}
