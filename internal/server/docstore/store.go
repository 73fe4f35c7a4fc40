// Package docstore is the document-store boundary used by the services.
//
// A Store serves plain reads of user documents and of the singleton index
// document, and runs transaction bodies. RunInTx executes exactly one
// attempt: on an optimistic conflict it returns ErrConflict, on a lost or
// refused connection ErrUnavailable, and the caller decides whether to run
// the body again. Inside a transaction every read
// must precede every write; implementations enforce this with Ordered.
package docstore

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/followhub/internal/server/models"
)

var (
	// ErrConflict reports that a document read by the transaction changed
	// before commit. Nothing was written.
	ErrConflict = errors.New("transaction conflict")

	// ErrUnavailable reports that the store could not be reached or dropped
	// the connection before anything was committed. The call may be retried.
	ErrUnavailable = errors.New("store unavailable")

	// ErrReadAfterWrite reports a read issued after a write in the same transaction.
	ErrReadAfterWrite = errors.New("read after write in transaction")
)

// Reader is the read side shared by the store and its transactions.
// Missing users yield common.ErrorNotFound; a missing index reads as empty.
type Reader interface {
	GetUser(ctx context.Context, privateID string) (*models.User, error)
	FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error)
	GetIndex(ctx context.Context) ([]string, error)
}

// Tx is the handle passed to a transaction body.
type Tx interface {
	Reader

	SetIndex(ctx context.Context, userList []string) error
	CreateUser(ctx context.Context, user *models.User) error
	UpdateFollowing(ctx context.Context, privateID string, following []string) error
	UpdateFollowerCount(ctx context.Context, privateID string, count int64) error
}

// TxFunc is a transaction body. Returning an error aborts with no writes.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is a document store with single-attempt transactions.
type Store interface {
	Reader

	RunInTx(ctx context.Context, fn TxFunc) error
	Close() error
}
