package users

import (
	"context"

	"github.com/dmitrijs2005/followhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByPrivateID(ctx context.Context, privateID string) (*models.User, error)
	GetByPublicID(ctx context.Context, publicID string) (*models.User, error)
	UpdateFollowing(ctx context.Context, privateID string, following []string) error
	UpdateFollowerCount(ctx context.Context, privateID string, count int64) error
}
