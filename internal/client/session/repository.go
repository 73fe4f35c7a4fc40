package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/followhub/internal/dbx"
)

// Key names one value of the stored session.
type Key string

const (
	KeyAccessToken Key = "access_token"
	KeyPublicID    Key = "public_id"
)

// Repository reads and writes session values. It works on the database or
// inside a transaction alike.
type Repository struct {
	db dbx.DBTX
}

func NewRepository(db dbx.DBTX) *Repository {
	return &Repository{db: db}
}

// Value returns the value stored under key; ok is false when there is none.
func (r *Repository) Value(ctx context.Context, key Key) (value string, ok bool, err error) {
	err = r.db.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, string(key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session %s: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing what was there.
func (r *Repository) Put(ctx context.Context, key Key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, string(key), value)
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", key, err)
	}
	return nil
}

// Clear forgets the whole session.
func (r *Repository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
