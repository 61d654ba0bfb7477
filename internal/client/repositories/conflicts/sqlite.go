package conflicts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesync/internal/client/models"
	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/dbx"
)

// SQLiteRepository keeps both sides of a conflict as JSON documents, the
// same shape the server sent them in.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, c *models.Conflict) error {
	clientNote, err := json.Marshal(c.ClientNote)
	if err != nil {
		return fmt.Errorf("failed to encode client note: %w", err)
	}
	serverNote, err := json.Marshal(c.ServerNote)
	if err != nil {
		return fmt.Errorf("failed to encode server note: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conflicts (id, client_note, server_note, detected_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_note = excluded.client_note,
			server_note = excluded.server_note,
			detected_at = excluded.detected_at
	`, c.ID, string(clientNote), string(serverNote), c.DetectedAt)
	if err != nil {
		return fmt.Errorf("failed to save conflict %s: %w", c.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConflict(s scanner) (*models.Conflict, error) {
	c := &models.Conflict{}
	var clientNote, serverNote string
	if err := s.Scan(&c.ID, &clientNote, &serverNote, &c.DetectedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(clientNote), &c.ClientNote); err != nil {
		return nil, fmt.Errorf("failed to decode client note: %w", err)
	}
	if err := json.Unmarshal([]byte(serverNote), &c.ServerNote); err != nil {
		return nil, fmt.Errorf("failed to decode server note: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Conflict, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, client_note, server_note, detected_at FROM conflicts WHERE id = ?`, id)

	c, err := scanConflict(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conflict %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Conflict, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, client_note, server_note, detected_at FROM conflicts ORDER BY detected_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select conflicts: %w", err)
	}
	defer rows.Close()

	result := []*models.Conflict{}
	for rows.Next() {
		c, err := scanConflict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict: %w", err)
		}
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conflicts: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM conflicts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conflict %s: %w", id, err)
	}
	return nil
}
