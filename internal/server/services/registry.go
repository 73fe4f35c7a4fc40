// Package services contains the server-side business logic: the identity
// registry, the follow ledger and the feed assembler. Every read-modify-write
// goes through runTx, so a conflicting transaction is run again in full.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/models"
	"github.com/dmitrijs2005/followhub/internal/shared"
)

// Registry creates users together with their index entry and resolves
// users by private or public identifier.
type Registry struct {
	store  docstore.Store
	retry  retryPolicy
	logger logging.Logger

	newID func() (string, error)
	now   func() time.Time
}

func NewRegistry(store docstore.Store, cfg *config.Config, logger logging.Logger) *Registry {
	return &Registry{
		store:  store,
		retry:  newRetryPolicy(cfg),
		logger: logger.With("service", "registry"),
		newID:  shared.NewIdentifier,
		now:    time.Now,
	}
}

// Register creates a user and appends its public identifier to the index in
// one transaction. Nickname and origin must be non-empty after trimming.
func (r *Registry) Register(ctx context.Context, nickname, origin string) (*models.Identity, error) {
	nickname = strings.TrimSpace(nickname)
	origin = strings.TrimSpace(origin)

	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", common.ErrValidation)
	}
	if origin == "" {
		return nil, fmt.Errorf("%w: origin is required", common.ErrValidation)
	}

	privateID, err := r.newID()
	if err != nil {
		return nil, fmt.Errorf("error generating private id: %w", err)
	}
	publicID, err := r.newID()
	if err != nil {
		return nil, fmt.Errorf("error generating public id: %w", err)
	}

	user := &models.User{
		PrivateID: privateID,
		PublicID:  publicID,
		Nickname:  nickname,
		Origin:    origin,
		Following: []string{},
		CreatedAt: r.now().UTC(),
	}

	err = runTx(ctx, r.store, r.retry, r.logger, "register", func(ctx context.Context, tx docstore.Tx) error {
		return registerTx(ctx, tx, user)
	})
	if err != nil {
		r.logger.Error(ctx, "registration failed", "err", err)
		return nil, err
	}

	r.logger.Info(ctx, "user registered", "public_id", publicID)
	return &models.Identity{PrivateID: privateID, PublicID: publicID}, nil
}

// registerTx appends user.PublicID to the index and creates the user document.
func registerTx(ctx context.Context, tx docstore.Tx, user *models.User) error {
	userList, err := tx.GetIndex(ctx)
	if err != nil {
		return fmt.Errorf("error reading index: %w", err)
	}

	next := append(slices.Clip(userList), user.PublicID)
	if err := tx.SetIndex(ctx, next); err != nil {
		return fmt.Errorf("error writing index: %w", err)
	}
	if err := tx.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// LookupByPrivateID returns the user addressed by privateID or common.ErrorNotFound.
func (r *Registry) LookupByPrivateID(ctx context.Context, privateID string) (*models.User, error) {
	if privateID == "" {
		return nil, fmt.Errorf("%w: private id is required", common.ErrValidation)
	}
	return runRead(ctx, r.retry, r.logger, "lookup_private", func(ctx context.Context) (*models.User, error) {
		return r.store.GetUser(ctx, privateID)
	})
}

// LookupByPublicID returns the only user with publicID or common.ErrorNotFound.
func (r *Registry) LookupByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	if publicID == "" {
		return nil, fmt.Errorf("%w: public id is required", common.ErrValidation)
	}
	return runRead(ctx, r.retry, r.logger, "lookup_public", func(ctx context.Context) (*models.User, error) {
		return r.store.FindUserByPublicID(ctx, publicID)
	})
}

// GetProfile returns the owner's own user document. A missing user is
// reported as common.ErrActorNotFound.
func (r *Registry) GetProfile(ctx context.Context, privateID string) (*models.User, error) {
	user, err := r.LookupByPrivateID(ctx, privateID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrActorNotFound
	}
	return user, err
}

// ListPublicIDs returns the index: every public identifier in registration order.
func (r *Registry) ListPublicIDs(ctx context.Context) ([]string, error) {
	return runRead(ctx, r.retry, r.logger, "list_index", r.store.GetIndex)
}
