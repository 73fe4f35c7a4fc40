// Package models defines the server-side documents and their projections.
package models

import (
	"slices"
	"time"
)

// User is one registered user document, addressed by its private identifier.
type User struct {
	// PrivateID is the primary key and the owner's credential. It never
	// leaves the server in a response addressed to anyone but the owner.
	PrivateID string
	// PublicID is the only identifier shown to other users.
	PublicID string

	Nickname string
	Origin   string

	// Following holds the public identifiers this user follows, in follow order.
	Following []string
	// FollowerCount is the number of other users whose Following contains PublicID.
	FollowerCount int64

	CreatedAt time.Time
}

// IsFollowing reports whether the user follows publicID.
func (u *User) IsFollowing(publicID string) bool {
	return slices.Contains(u.Following, publicID)
}

// Clone returns a deep copy so callers never share the Following slice.
func (u *User) Clone() *User {
	c := *u
	c.Following = slices.Clone(u.Following)
	if c.Following == nil {
		c.Following = []string{}
	}
	return &c
}

// Identity is the result of a successful registration.
type Identity struct {
	PrivateID string
	PublicID  string
}
