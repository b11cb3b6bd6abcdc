package config

import "time"

type BackendConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
}

type Backend struct{}

var _ BackendConfig = Backend{}

// GetAPIBaseURL returns the remote chat backend root, e.g. "https://api.winaclaim.com/api"
func (Backend) GetAPIBaseURL() string {
	return GetEnv("API_BASE_URL", "http://localhost:8000/api")
}

// GetAPITimeout returns the outgoing request timeout. Zero keeps the http.Client default (none).
func (Backend) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 0)
}
