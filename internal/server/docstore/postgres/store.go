// Package postgres implements docstore.Store on PostgreSQL. Each RunInTx
// call is one SERIALIZABLE transaction; serialization failures and deadlocks
// surface as docstore.ErrConflict, connection failures as
// docstore.ErrUnavailable. The unique index on users.public_id serves public
// identifier lookups.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/dbx"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/models"
	"github.com/dmitrijs2005/followhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/followhub/internal/server/repositories/userindex"
	"github.com/dmitrijs2005/followhub/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// SQLSTATE codes that mean "run the transaction again".
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// SQLSTATE codes and classes reported while the server is going away or
// refusing work.
const (
	sqlClassConnectionException = "08"
	sqlStateTooManyConnections  = "53300"
	sqlStateAdminShutdown       = "57P01"
	sqlStateCrashShutdown       = "57P02"
	sqlStateCannotConnectNow    = "57P03"
)

type Store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

var _ docstore.Store = (*Store)(nil)

func New(db *sql.DB, m repomanager.RepositoryManager) *Store {
	return &Store{db: db, repomanager: m}
}

// Open connects with the pgx driver, checks the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return New(db, m), nil
}

func (s *Store) GetUser(ctx context.Context, privateID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByPrivateID(ctx, privateID)
	return u, classifyRead(err)
}

func (s *Store) FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByPublicID(ctx, publicID)
	return u, classifyRead(err)
}

func (s *Store) GetIndex(ctx context.Context) ([]string, error) {
	list, err := s.repomanager.UserIndex(s.db).Get(ctx)
	return list, classifyRead(err)
}

// RunInTx runs fn in a single serializable transaction.
//
// A connection lost while committing leaves the outcome unknown, so it is
// reported as common.ErrTransientStore rather than docstore.ErrUnavailable
// and never replayed.
func (s *Store) RunInTx(ctx context.Context, fn docstore.TxFunc) error {
	err := dbx.WithTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, docstore.Ordered(&txHandle{
			users: s.repomanager.Users(tx),
			index: s.repomanager.UserIndex(tx),
		}))
	})

	var commitErr *dbx.CommitError
	switch {
	case err == nil:
		return nil
	case isConflict(err):
		return fmt.Errorf("%w: %v", docstore.ErrConflict, err)
	case isUnavailable(err) && errors.As(err, &commitErr):
		return fmt.Errorf("%w: commit outcome unknown: %w", common.ErrTransientStore, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
	}
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
}

func classifyRead(err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
	}
	return err
}

// isUnavailable reports connection-level failures: refused or dropped
// connections and a server that is shutting down or full. Context
// cancellation is the caller's doing and does not count.
func isUnavailable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateTooManyConnections, sqlStateAdminShutdown, sqlStateCrashShutdown, sqlStateCannotConnectNow:
			return true
		}
		return strings.HasPrefix(pgErr.Code, sqlClassConnectionException)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// txHandle adapts the repositories bound to one *sql.Tx to docstore.Tx.
type txHandle struct {
	users users.Repository
	index userindex.Repository
}

func (h *txHandle) GetUser(ctx context.Context, privateID string) (*models.User, error) {
	return h.users.GetByPrivateID(ctx, privateID)
}

func (h *txHandle) FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	return h.users.GetByPublicID(ctx, publicID)
}

func (h *txHandle) GetIndex(ctx context.Context) ([]string, error) {
	return h.index.Get(ctx)
}

func (h *txHandle) SetIndex(ctx context.Context, userList []string) error {
	return h.index.Set(ctx, userList)
}

func (h *txHandle) CreateUser(ctx context.Context, user *models.User) error {
	return h.users.Create(ctx, user)
}

func (h *txHandle) UpdateFollowing(ctx context.Context, privateID string, following []string) error {
	return h.users.UpdateFollowing(ctx, privateID, following)
}

func (h *txHandle) UpdateFollowerCount(ctx context.Context, privateID string, count int64) error {
	return h.users.UpdateFollowerCount(ctx, privateID, count)
}
