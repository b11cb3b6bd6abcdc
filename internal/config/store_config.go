package config

import (
	"path/filepath"
	"time"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetStorePath() string
	GetStoreKey() string
	GetSessionIdleTimeout() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetStoreDriver selects the server-side profile store: "memory" or "sqlite"
func (Store) GetStoreDriver() string {
	return GetEnv("STORE_DRIVER", "sqlite")
}

func (Store) GetStorePath() string {
	return GetEnv("STORE_PATH", filepath.Join(EnvVars{}.GetDataFolder(), "profiles.db"))
}

// GetStoreKey returns the hex encoded 32 byte key used to seal file backed stores.
// An empty key leaves the file in plain JSON.
func (Store) GetStoreKey() string {
	return GetEnv("STORE_KEY", "")
}

// GetSessionIdleTimeout is how long the server keeps an unused browser session in memory.
// The profile store outlives it.
func (Store) GetSessionIdleTimeout() time.Duration {
	return GetEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute)
}
