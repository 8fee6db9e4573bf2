package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiry reads the exp claim without verifying the signature. The API owns the key;
// the dashboard only needs to know whether a stored token is already dead. Opaque
// tokens report ok=false.
func expiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func expired(token string, now time.Time) bool {
	exp, ok := expiry(token)
	return ok && !exp.After(now)
}
