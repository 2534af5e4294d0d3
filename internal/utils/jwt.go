package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token carries no "exp" claim.
var ErrNoExpiry = errors.New("token has no expiration claim")

// TokenClaims is the subset of access-token claims the client reads.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// accessTokenClaims mirrors the identity server payload. Only the fields
// listed here are decoded.
type accessTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ParseTokenClaims decodes an access token WITHOUT verifying its signature.
// The client never trusts these values for authorization; they are used to
// schedule token refresh and to label log entries.
//
// Example usage:
//
//	claims, err := utils.ParseTokenClaims(session.AccessToken)
//	if err == nil && time.Until(claims.ExpiresAt) < margin {
//	    // refresh
//	}
func ParseTokenClaims(tokenString string) (TokenClaims, error) {
	claims := &accessTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parse access token: %w", err)
	}

	out := TokenClaims{Subject: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// ParseTokenExpiry returns the "exp" claim of an access token.
func ParseTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ParseTokenClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt.IsZero() {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt, nil
}
