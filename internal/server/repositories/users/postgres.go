// Package users stores user documents in PostgreSQL. The following list is
// kept as a JSONB array so the row mirrors the document it represents.
package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/dbx"
	"github.com/dmitrijs2005/followhub/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a brand-new user document.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	following, err := encodeFollowing(user.Following)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (private_id, public_id, nickname, origin, following, follower_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		user.PrivateID, user.PublicID, user.Nickname, user.Origin, following, user.FollowerCount, user.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByPrivateID fetches a user by primary key. Returns common.ErrorNotFound when absent.
func (r *PostgresRepository) GetByPrivateID(ctx context.Context, privateID string) (*models.User, error) {
	query := `
		SELECT private_id, public_id, nickname, origin, following, follower_count, created_at
		FROM users
		WHERE private_id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, privateID))
}

// GetByPublicID resolves a public identifier through the unique public_id index.
// Returns common.ErrorNotFound when nothing matches.
func (r *PostgresRepository) GetByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	query := `
		SELECT private_id, public_id, nickname, origin, following, follower_count, created_at
		FROM users
		WHERE public_id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, publicID))
}

// UpdateFollowing replaces the following list of the given user.
func (r *PostgresRepository) UpdateFollowing(ctx context.Context, privateID string, following []string) error {
	encoded, err := encodeFollowing(following)
	if err != nil {
		return err
	}
	query := `
		UPDATE users SET following = $2
		WHERE private_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, privateID, encoded)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

// UpdateFollowerCount stores a new follower count for the given user.
func (r *PostgresRepository) UpdateFollowerCount(ctx context.Context, privateID string, count int64) error {
	query := `
		UPDATE users SET follower_count = $2
		WHERE private_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, privateID, count)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var following []byte

	err := row.Scan(&user.PrivateID, &user.PublicID, &user.Nickname, &user.Origin,
		&following, &user.FollowerCount, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(following, &user.Following); err != nil {
		return nil, fmt.Errorf("decode following: %w", err)
	}
	if user.Following == nil {
		user.Following = []string{}
	}
	return user, nil
}

func encodeFollowing(following []string) (string, error) {
	if following == nil {
		following = []string{}
	}
	b, err := json.Marshal(following)
	if err != nil {
		return "", fmt.Errorf("encode following: %w", err)
	}
	return string(b), nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
