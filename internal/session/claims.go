package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nhle/taskapp/internal/api"
)

// TokenExpiry returns the exp claim of a JWT bearer token without
// verifying its signature. Opaque or malformed tokens yield the zero time.
func TokenExpiry(token string) time.Time {
	token = api.CleanToken(token)
	if strings.Count(token, ".") != 2 {
		return time.Time{}
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
