// Package session keeps the client's session token and public identifier in
// a local SQLite file so that consecutive followctl runs share one identity.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/followhub/internal/client/session/migrations"
	"github.com/dmitrijs2005/followhub/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the session database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Token returns the stored session token, or "" when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, _, err := NewRepository(s.db).Value(ctx, KeyAccessToken)
	return v, err
}

// PublicID returns the stored public identifier, or "".
func (s *Store) PublicID(ctx context.Context) (string, error) {
	v, _, err := NewRepository(s.db).Value(ctx, KeyPublicID)
	return v, err
}

// Save replaces the session atomically.
func (s *Store) Save(ctx context.Context, token, publicID string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewRepository(tx)
		if err := repo.Put(ctx, KeyAccessToken, token); err != nil {
			return err
		}
		return repo.Put(ctx, KeyPublicID, publicID)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return NewRepository(s.db).Clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
