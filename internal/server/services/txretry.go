package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/sethvargo/go-retry"
)

const (
	maxTxBackoff       = 500 * time.Millisecond
	defaultTxAttempts  = 5
	defaultBaseBackoff = 10 * time.Millisecond
	txJitterPercent    = 20
)

// retryPolicy bounds how often a conflicting transaction body or a read
// against an unreachable store is run.
type retryPolicy struct {
	maxAttempts int
	baseBackoff time.Duration
}

func newRetryPolicy(cfg *config.Config) retryPolicy {
	p := retryPolicy{maxAttempts: cfg.TxMaxAttempts, baseBackoff: cfg.TxBaseBackoff}
	if p.maxAttempts < 1 {
		p.maxAttempts = defaultTxAttempts
	}
	if p.baseBackoff <= 0 {
		p.baseBackoff = defaultBaseBackoff
	}
	return p
}

func (p retryPolicy) backoff() retry.Backoff {
	b := retry.NewExponential(p.baseBackoff)
	b = retry.WithJitterPercent(txJitterPercent, b)
	b = retry.WithCappedDuration(maxTxBackoff, b)
	return retry.WithMaxRetries(uint64(p.maxAttempts-1), b)
}

// runTx runs fn in a store transaction, starting over from scratch on
// docstore.ErrConflict or docstore.ErrUnavailable until the policy's attempts
// are used up. Exhaustion is reported as common.ErrTransientStore. Any other
// error ends the loop and is returned unchanged.
func runTx(ctx context.Context, store docstore.Store, policy retryPolicy, logger logging.Logger, op string, fn docstore.TxFunc) error {
	return withRetry(ctx, policy, logger, op, func(ctx context.Context) error {
		return store.RunInTx(ctx, fn)
	})
}

// runRead is runTx for a plain read: only docstore.ErrUnavailable is retried.
func runRead[T any](ctx context.Context, policy retryPolicy, logger logging.Logger, op string, read func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := withRetry(ctx, policy, logger, op, func(ctx context.Context) error {
		v, err := read(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func withRetry(ctx context.Context, policy retryPolicy, logger logging.Logger, op string, call func(ctx context.Context) error) error {
	attempt := 0
	err := retry.Do(ctx, policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := call(ctx)
		switch {
		case errors.Is(err, docstore.ErrConflict):
			logger.Warn(ctx, "transaction conflict", "op", op, "attempt", attempt)
			return retry.RetryableError(err)
		case errors.Is(err, docstore.ErrUnavailable):
			logger.Warn(ctx, "store unavailable", "op", op, "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}
		return err
	})

	if errors.Is(err, docstore.ErrConflict) || errors.Is(err, docstore.ErrUnavailable) {
		return fmt.Errorf("%w: %s gave up after %d attempts: %v", common.ErrTransientStore, op, attempt, err)
	}
	return err
}
