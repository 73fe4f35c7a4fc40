package models

import "time"

// FeedEntry is the projection of a user shown to somebody else.
// It deliberately has no private identifier.
type FeedEntry struct {
	Nickname      string
	PublicID      string
	Origin        string
	IsFollowing   bool
	FollowerCount int64
	CreatedAt     time.Time
}

// Feed is one page of the user directory.
type Feed struct {
	Users   []FeedEntry
	HasMore bool
	Page    int
}
