package auth

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// tokenExpiry reads the exp claim of a JWT access token without verifying it. The signature
// is the backend's business; the front-end only wants to know whether the token has obviously
// lapsed. ok is false for opaque tokens or tokens without exp.
func tokenExpiry(rawToken string) (expiry time.Time, ok bool) {
	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
