// Package auth wraps a user's private identifier in a signed session token.
// The token is what travels in the session cookie and in gRPC metadata.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the standard registered claims plus the owner's private identifier.
type Claims struct {
	jwt.RegisteredClaims
	PrivateID string `json:"pid"`
}

func GenerateToken(privateID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		PrivateID: privateID,
	})

	return token.SignedString(secretKey)
}

// GetPrivateIDFromToken verifies tokenString and returns the private
// identifier it carries. Every failure matches common.ErrInvalidToken.
func GetPrivateIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", common.ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.PrivateID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.PrivateID, nil
}
