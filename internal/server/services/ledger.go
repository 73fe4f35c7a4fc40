package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
)

// Ledger records follow edges. The actor's following list and the target's
// follower count always change in the same transaction.
type Ledger struct {
	store  docstore.Store
	retry  retryPolicy
	logger logging.Logger
}

func NewLedger(store docstore.Store, cfg *config.Config, logger logging.Logger) *Ledger {
	return &Ledger{
		store:  store,
		retry:  newRetryPolicy(cfg),
		logger: logger.With("service", "ledger"),
	}
}

// Follow makes the actor follow the user with targetPublicID.
//
// Errors: common.ErrActorNotFound, common.ErrTargetNotFound,
// common.ErrSelfFollow, common.ErrAlreadyFollowing, common.ErrTransientStore.
// None of them leaves a partial write behind.
func (l *Ledger) Follow(ctx context.Context, actorPrivateID, targetPublicID string) error {
	targetPublicID = strings.TrimSpace(targetPublicID)

	if actorPrivateID == "" {
		return fmt.Errorf("%w: private id is required", common.ErrValidation)
	}
	if targetPublicID == "" {
		return fmt.Errorf("%w: target public id is required", common.ErrValidation)
	}

	err := runTx(ctx, l.store, l.retry, l.logger, "follow", func(ctx context.Context, tx docstore.Tx) error {
		return followTx(ctx, tx, actorPrivateID, targetPublicID)
	})
	if err != nil {
		l.logger.Info(ctx, "follow rejected", "target", targetPublicID, "err", err)
		return err
	}

	l.logger.Info(ctx, "follow recorded", "target", targetPublicID)
	return nil
}

func followTx(ctx context.Context, tx docstore.Tx, actorPrivateID, targetPublicID string) error {
	actor, err := tx.GetUser(ctx, actorPrivateID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrActorNotFound
	}
	if err != nil {
		return fmt.Errorf("error reading actor: %w", err)
	}

	if actor.PublicID == targetPublicID {
		return common.ErrSelfFollow
	}

	target, err := tx.FindUserByPublicID(ctx, targetPublicID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrTargetNotFound
	}
	if err != nil {
		return fmt.Errorf("error reading target: %w", err)
	}

	if actor.IsFollowing(targetPublicID) {
		return common.ErrAlreadyFollowing
	}

	following := append(slices.Clip(actor.Following), targetPublicID)
	if err := tx.UpdateFollowing(ctx, actor.PrivateID, following); err != nil {
		return fmt.Errorf("error updating following: %w", err)
	}
	if err := tx.UpdateFollowerCount(ctx, target.PrivateID, target.FollowerCount+1); err != nil {
		return fmt.Errorf("error updating follower count: %w", err)
	}
	return nil
}
