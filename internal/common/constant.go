package common

import "time"

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on inbound requests.
const AccessTokenHeaderName = "access_token"

// SessionCookieName is the HTTP cookie that binds a client to its private identifier.
const SessionCookieName = "privateUserID"

// Input bounds applied at the transport boundary.
const (
	MaxNicknameLength = 32
	MaxOriginLength   = 64
)

// DefaultSessionValidity matches the one-year lifetime of the credential cookie.
const DefaultSessionValidity = 365 * 24 * time.Hour
