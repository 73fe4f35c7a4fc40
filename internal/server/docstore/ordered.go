package docstore

import (
	"context"

	"github.com/dmitrijs2005/followhub/internal/server/models"
)

// Ordered wraps tx so that any read after the first write fails with
// ErrReadAfterWrite.
func Ordered(tx Tx) Tx {
	return &orderedTx{tx: tx}
}

type orderedTx struct {
	tx    Tx
	wrote bool
}

func (o *orderedTx) GetUser(ctx context.Context, privateID string) (*models.User, error) {
	if o.wrote {
		return nil, ErrReadAfterWrite
	}
	return o.tx.GetUser(ctx, privateID)
}

func (o *orderedTx) FindUserByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	if o.wrote {
		return nil, ErrReadAfterWrite
	}
	return o.tx.FindUserByPublicID(ctx, publicID)
}

func (o *orderedTx) GetIndex(ctx context.Context) ([]string, error) {
	if o.wrote {
		return nil, ErrReadAfterWrite
	}
	return o.tx.GetIndex(ctx)
}

func (o *orderedTx) SetIndex(ctx context.Context, userList []string) error {
	o.wrote = true
	return o.tx.SetIndex(ctx, userList)
}

func (o *orderedTx) CreateUser(ctx context.Context, user *models.User) error {
	o.wrote = true
	return o.tx.CreateUser(ctx, user)
}

func (o *orderedTx) UpdateFollowing(ctx context.Context, privateID string, following []string) error {
	o.wrote = true
	return o.tx.UpdateFollowing(ctx, privateID, following)
}

func (o *orderedTx) UpdateFollowerCount(ctx context.Context, privateID string, count int64) error {
	o.wrote = true
	return o.tx.UpdateFollowerCount(ctx, privateID, count)
}
