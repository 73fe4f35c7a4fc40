// Package dbx holds the database/sql plumbing under the document stores and
// the client session: DBTX, satisfied by both *sql.DB and *sql.Tx, and
// WithTx, which runs a function inside one transaction and tells a failed
// COMMIT apart from a failed body.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Serializable is the isolation used for every read-modify-write of documents.
var Serializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// CommitError is returned by WithTx when fn succeeded but COMMIT failed.
// Unless the cause says otherwise (a serialization failure, say), the
// caller cannot know whether the transaction took effect.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string { return "commit failed: " + e.Err.Error() }
func (e *CommitError) Unwrap() error { return e.Err }

// WithTx begins a transaction, runs fn with the transactional handle and
// commits when fn succeeds. Any error or panic rolls back; panics are rethrown.
// A commit failure comes back as *CommitError wrapping the driver error.
//
//	err := dbx.WithTx(ctx, db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = &CommitError{Err: cerr}
		}
	}()

	return fn(ctx, tx)
}
