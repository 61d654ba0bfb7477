package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/dbx"
	"github.com/dmitrijs2005/notesync/internal/server/models"
)

// SQLiteRepository stores notes in SQLite. The deleted flag is kept as 0/1.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	query := `select id, title, content, version, created_at, updated_at, deleted from notes where id = ?`

	n, err := scanNote(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, n *models.Note) error {
	query := `insert into notes (id, title, content, version, created_at, updated_at, deleted)
		values (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Content, n.Version, n.CreatedAt, n.UpdatedAt, boolToInt(n.Deleted))
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, n *models.Note) error {
	query := `update notes set title = ?, content = ?, version = ?, updated_at = ?, deleted = ? where id = ?`

	_, err := r.db.ExecContext(ctx, query,
		n.Title, n.Content, n.Version, n.UpdatedAt, boolToInt(n.Deleted), n.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateIfVersion(ctx context.Context, n *models.Note, expected int64) error {
	query := `update notes set title = ?, content = ?, version = ?, updated_at = ?, deleted = ?
		where id = ? and version = ?`

	res, err := r.db.ExecContext(ctx, query,
		n.Title, n.Content, n.Version, n.UpdatedAt, boolToInt(n.Deleted), n.ID, expected)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return checkSingleRow(res)
}

func (r *SQLiteRepository) SelectAll(ctx context.Context) ([]*models.Note, error) {
	query := `select id, title, content, version, created_at, updated_at, deleted from notes order by created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (*models.Note, error) {
	var (
		n       models.Note
		deleted int
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &n.Version, &n.CreatedAt, &n.UpdatedAt, &deleted); err != nil {
		return nil, err
	}
	n.Deleted = deleted != 0
	return &n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
