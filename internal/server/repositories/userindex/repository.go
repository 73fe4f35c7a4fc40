package userindex

import "context"

// Repository reads and replaces the singleton index document.
type Repository interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, userList []string) error
}
