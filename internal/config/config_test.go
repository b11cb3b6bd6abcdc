package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-chat-frontend/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, name := range []string{"PORT", "APP_NAME", "FOLDER", "ENV", "API_BASE_URL", "API_TIMEOUT", "SECURE_COOKIES", "STORE_DRIVER", "STORE_PATH", "STORE_KEY", "SESSION_IDLE_TIMEOUT"} {
		t.Setenv(name, "")
	}
	c := config.New()

	require.Equal(t, ":3000", c.GetPort())
	require.Equal(t, "Win A Claim", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:8000/api", c.GetAPIBaseURL())
	require.Zero(t, c.GetAPITimeout())
	require.False(t, c.GetSecureCookies())
	require.Equal(t, "sqlite", c.GetStoreDriver())
	require.Equal(t, filepath.Join("./data", "profiles.db"), c.GetStorePath())
	require.Empty(t, c.GetStoreKey())
	require.Equal(t, 30*time.Minute, c.GetSessionIdleTimeout())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", ":8080")
	t.Setenv("API_BASE_URL", "https://api.example.com/api")
	t.Setenv("API_TIMEOUT", "15")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("FOLDER", "/var/lib/chat")
	t.Setenv("STORE_PATH", "")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "https://api.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
	require.True(t, c.GetSecureCookies())
	require.Equal(t, "memory", c.GetStoreDriver())
	require.Equal(t, filepath.Join("/var/lib/chat", "profiles.db"), c.GetStorePath())
	require.Equal(t, 5*time.Minute, c.GetSessionIdleTimeout())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "1m30s")
	require.Equal(t, 90*time.Second, config.GetEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "soon")
	require.Equal(t, time.Second, config.GetEnvDuration("TEST_DURATION", time.Second))
}
