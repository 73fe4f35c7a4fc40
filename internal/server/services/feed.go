package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/models"
)

const defaultFeedPageSize = 10

// FeedAssembler pages through the index on behalf of one viewer.
type FeedAssembler struct {
	store    docstore.Reader
	pageSize int
	retry    retryPolicy
	logger   logging.Logger
}

func NewFeedAssembler(store docstore.Reader, cfg *config.Config, logger logging.Logger) *FeedAssembler {
	size := cfg.FeedPageSize
	if size < 1 {
		size = defaultFeedPageSize
	}
	return &FeedAssembler{
		store:    store,
		pageSize: size,
		retry:    newRetryPolicy(cfg),
		logger:   logger.With("service", "feed"),
	}
}

// GetFeed returns page (1-based) of every other user, in registration order.
// A page past the end is empty, not an error.
func (f *FeedAssembler) GetFeed(ctx context.Context, privateID string, page int) (*models.Feed, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1", common.ErrValidation)
	}
	if privateID == "" {
		return nil, fmt.Errorf("%w: private id is required", common.ErrValidation)
	}

	viewer, err := runRead(ctx, f.retry, f.logger, "feed_viewer", func(ctx context.Context) (*models.User, error) {
		return f.store.GetUser(ctx, privateID)
	})
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrActorNotFound
	}
	if err != nil {
		return nil, err
	}

	userList, err := runRead(ctx, f.retry, f.logger, "feed_index", f.store.GetIndex)
	if err != nil {
		return nil, fmt.Errorf("error reading index: %w", err)
	}

	others := make([]string, 0, len(userList))
	for _, id := range userList {
		if id != viewer.PublicID {
			others = append(others, id)
		}
	}

	start, end := pageBounds(len(others), f.pageSize, page)

	entries := make([]models.FeedEntry, 0, end-start)
	for _, publicID := range others[start:end] {
		u, err := runRead(ctx, f.retry, f.logger, "feed_entry", func(ctx context.Context) (*models.User, error) {
			return f.store.FindUserByPublicID(ctx, publicID)
		})
		if errors.Is(err, common.ErrorNotFound) {
			f.logger.Warn(ctx, "index entry without user", "public_id", publicID)
			continue
		}
		if err != nil {
			return nil, err
		}

		entries = append(entries, models.FeedEntry{
			Nickname:      u.Nickname,
			PublicID:      u.PublicID,
			Origin:        u.Origin,
			IsFollowing:   viewer.IsFollowing(u.PublicID),
			FollowerCount: u.FollowerCount,
			CreatedAt:     u.CreatedAt,
		})
	}

	return &models.Feed{Users: entries, HasMore: end < len(others), Page: page}, nil
}

// pageBounds returns the clamped half-open range [start, end) of page within
// n items. It never overflows, whatever page is.
func pageBounds(n, size, page int) (start, end int) {
	if size < 1 || page < 1 || page-1 > n/size {
		return n, n
	}
	start = (page - 1) * size
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}
