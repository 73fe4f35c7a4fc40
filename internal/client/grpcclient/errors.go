package grpcclient

import "errors"

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrUnauthorized     = errors.New("not registered or session expired")
	ErrNotFound         = errors.New("user not found")
	ErrAlreadyFollowing = errors.New("already following user")
	ErrInvalidRequest   = errors.New("invalid request")
)
