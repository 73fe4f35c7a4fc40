package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/docstore/memory"
	"github.com/dmitrijs2005/followhub/internal/server/models"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		FeedPageSize:  10,
		TxMaxAttempts: 200,
		TxBaseBackoff: time.Millisecond,
	}
}

type fixture struct {
	store    *countingStore
	registry *Registry
	ledger   *Ledger
	feed     *FeedAssembler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &countingStore{Store: memory.New()}
	cfg := testConfig()
	log := logging.Nop{}
	return &fixture{
		store:    store,
		registry: NewRegistry(store, cfg, log),
		ledger:   NewLedger(store, cfg, log),
		feed:     NewFeedAssembler(store, cfg, log),
	}
}

func (f *fixture) register(t *testing.T, nickname string) *models.Identity {
	t.Helper()
	id, err := f.registry.Register(context.Background(), nickname, "somewhere")
	require.NoError(t, err)
	return id
}

func (f *fixture) user(t *testing.T, privateID string) *models.User {
	t.Helper()
	u, err := f.registry.LookupByPrivateID(context.Background(), privateID)
	require.NoError(t, err)
	return u
}

// countingStore counts write calls issued through its transactions.
type countingStore struct {
	docstore.Store
	writes atomic.Int64
}

func (s *countingStore) RunInTx(ctx context.Context, fn docstore.TxFunc) error {
	return s.Store.RunInTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		return fn(ctx, &countingTx{Tx: tx, writes: &s.writes})
	})
}

type countingTx struct {
	docstore.Tx
	writes *atomic.Int64
}

func (t *countingTx) SetIndex(ctx context.Context, l []string) error {
	t.writes.Add(1)
	return t.Tx.SetIndex(ctx, l)
}

func (t *countingTx) CreateUser(ctx context.Context, u *models.User) error {
	t.writes.Add(1)
	return t.Tx.CreateUser(ctx, u)
}

func (t *countingTx) UpdateFollowing(ctx context.Context, id string, f []string) error {
	t.writes.Add(1)
	return t.Tx.UpdateFollowing(ctx, id, f)
}

func (t *countingTx) UpdateFollowerCount(ctx context.Context, id string, n int64) error {
	t.writes.Add(1)
	return t.Tx.UpdateFollowerCount(ctx, id, n)
}

// conflictStore fails every transaction with docstore.ErrConflict.
type conflictStore struct {
	docstore.Store
	attempts atomic.Int64
}

func (s *conflictStore) RunInTx(ctx context.Context, fn docstore.TxFunc) error {
	s.attempts.Add(1)
	return docstore.ErrConflict
}

// flakyStore reports docstore.ErrUnavailable for the first failures calls
// of each kind and then passes through to the wrapped store.
type flakyStore struct {
	docstore.Store
	failures  int64
	txCalls   atomic.Int64
	readCalls atomic.Int64
}

func unreachable() error {
	return fmt.Errorf("%w: %w", docstore.ErrUnavailable,
		&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})
}

func (s *flakyStore) RunInTx(ctx context.Context, fn docstore.TxFunc) error {
	if s.txCalls.Add(1) <= s.failures {
		return unreachable()
	}
	return s.Store.RunInTx(ctx, fn)
}

func (s *flakyStore) GetUser(ctx context.Context, privateID string) (*models.User, error) {
	if s.readCalls.Add(1) <= s.failures {
		return nil, unreachable()
	}
	return s.Store.GetUser(ctx, privateID)
}

func (s *flakyStore) GetIndex(ctx context.Context) ([]string, error) {
	if s.readCalls.Add(1) <= s.failures {
		return nil, unreachable()
	}
	return s.Store.GetIndex(ctx)
}
