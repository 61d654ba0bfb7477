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

// PostgresRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT id, title, content, version, created_at, updated_at, deleted FROM notes
		WHERE id = $1`

	n := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Content, &n.Version, &n.CreatedAt, &n.UpdatedAt, &n.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, n *models.Note) error {
	query := `INSERT INTO notes (id, title, content, version, created_at, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Content, n.Version, n.CreatedAt, n.UpdatedAt, n.Deleted)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, n *models.Note) error {
	query := `UPDATE notes SET title = $1, content = $2, version = $3, updated_at = $4, deleted = $5
		WHERE id = $6`

	_, err := r.db.ExecContext(ctx, query,
		n.Title, n.Content, n.Version, n.UpdatedAt, n.Deleted, n.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// UpdateIfVersion is Update guarded by the stored version.
func (r *PostgresRepository) UpdateIfVersion(ctx context.Context, n *models.Note, expected int64) error {
	query := `UPDATE notes SET title = $1, content = $2, version = $3, updated_at = $4, deleted = $5
		WHERE id = $6 AND version = $7`

	res, err := r.db.ExecContext(ctx, query,
		n.Title, n.Content, n.Version, n.UpdatedAt, n.Deleted, n.ID, expected)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return checkSingleRow(res)
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Note, error) {
	query := `SELECT id, title, content, version, created_at, updated_at, deleted FROM notes
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Version, &n.CreatedAt, &n.UpdatedAt, &n.Deleted); err != nil {
			return nil, err
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func checkSingleRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
