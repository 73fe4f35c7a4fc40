// Package userindex stores the singleton index document: the ordered list
// of every registered public identifier.
package userindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/followhub/internal/dbx"
)

// documentID is the key of the only row in user_index.
const documentID = 1

// PostgresRepository implements Repository over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the user list. A missing index document reads as an empty list.
func (r *PostgresRepository) Get(ctx context.Context) ([]string, error) {
	query := `
		SELECT user_list FROM user_index
		WHERE id = $1
	`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	userList := []string{}
	if err := json.Unmarshal(raw, &userList); err != nil {
		return nil, fmt.Errorf("decode user list: %w", err)
	}
	if userList == nil {
		userList = []string{}
	}
	return userList, nil
}

// Set writes the full replacement list, creating the document if needed.
func (r *PostgresRepository) Set(ctx context.Context, userList []string) error {
	if userList == nil {
		userList = []string{}
	}
	encoded, err := json.Marshal(userList)
	if err != nil {
		return fmt.Errorf("encode user list: %w", err)
	}

	query := `
		INSERT INTO user_index (id, user_list)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET user_list = EXCLUDED.user_list
	`
	if _, err := r.db.ExecContext(ctx, query, documentID, string(encoded)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
