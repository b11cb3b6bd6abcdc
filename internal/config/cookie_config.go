package config

import "time"

type CookieConfig interface {
	GetSecureCookies() bool
	GetProfileCookieMaxAge() time.Duration
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

// GetSecureCookies forces the Secure flag even when the request arrived over plain http
// (for deployments behind a TLS terminating proxy that doesn't send X-Forwarded-Proto).
func (Cookies) GetSecureCookies() bool {
	return GetEnvBool("SECURE_COOKIES", false)
}

func (Cookies) GetProfileCookieMaxAge() time.Duration {
	return 365 * 24 * time.Hour
}
