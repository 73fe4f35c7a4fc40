// Package common defines shared constants and sentinel errors used across
// the followhub server layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Identity-specific not-found errors. Both match ErrorNotFound.
	ErrActorNotFound  = fmt.Errorf("actor %w", ErrorNotFound)
	ErrTargetNotFound = fmt.Errorf("target %w", ErrorNotFound)

	// Caller input errors. These never reach the store.
	ErrValidation = errors.New("validation error")

	// Follow guards.
	ErrAlreadyFollowing = errors.New("already following user")
	ErrSelfFollow       = errors.New("cannot follow yourself")

	// ErrTransientStore is returned when the store is unavailable or the
	// transaction retry budget is exhausted. Callers may retry.
	ErrTransientStore = errors.New("transient store error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
