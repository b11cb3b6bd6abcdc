package localstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func storesUnderTest(t *testing.T) map[string]localstore.Store {
	t.Helper()

	fileStore, err := localstore.OpenFileStore(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)

	profiles, err := localstore.OpenSQLiteProfiles(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { profiles.Close() })
	sqliteStore, err := profiles.Open("profile-1")
	require.NoError(t, err)

	return map[string]localstore.Store{
		"memory": localstore.NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStore_Conformance(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(localstore.KeyAccessToken)
			require.ErrorIs(t, err, errors.ErrNotFound)

			require.NoError(t, store.Set(localstore.KeyAccessToken, "access-1"))
			require.NoError(t, store.Set(localstore.KeyRefreshToken, "refresh-1"))
			require.NoError(t, store.Set(localstore.KeyAccessToken, "access-2"))

			v, err := store.Get(localstore.KeyAccessToken)
			require.NoError(t, err)
			require.Equal(t, "access-2", v)

			keys, err := store.Keys()
			require.NoError(t, err)
			require.Equal(t, []string{localstore.KeyAccessToken, localstore.KeyRefreshToken}, keys)

			require.NoError(t, store.Remove(localstore.KeyRefreshToken))
			require.NoError(t, store.Remove("never-set"))
			require.False(t, localstore.Has(store, localstore.KeyRefreshToken))

			require.NoError(t, store.Clear())
			keys, err = store.Keys()
			require.NoError(t, err)
			require.Empty(t, keys)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	store := localstore.NewMemoryStore()
	type payload struct {
		History   []string `json:"history"`
		SessionID *string  `json:"sessionId"`
	}
	id := "abc"
	require.NoError(t, localstore.SetJSON(store, localstore.KeyChatSessions, payload{History: []string{"a", "b"}, SessionID: &id}))

	raw, err := store.Get(localstore.KeyChatSessions)
	require.NoError(t, err)
	require.JSONEq(t, `{"history":["a","b"],"sessionId":"abc"}`, raw)

	var got payload
	require.NoError(t, localstore.GetJSON(store, localstore.KeyChatSessions, &got))
	require.Equal(t, []string{"a", "b"}, got.History)
	require.Equal(t, "abc", *got.SessionID)

	require.NoError(t, store.Set(localstore.KeyUser, "{not json"))
	require.Error(t, localstore.GetJSON(store, localstore.KeyUser, &got))
	require.ErrorIs(t, localstore.GetJSON(store, "missing", &got), errors.ErrNotFound)
	require.Equal(t, "", localstore.GetString(store, "missing"))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	store, err := localstore.OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(localstore.KeyUser, `{"id":1}`))

	reopened, err := localstore.OpenFileStore(path)
	require.NoError(t, err)
	v, err := reopened.Get(localstore.KeyUser)
	require.NoError(t, err)
	require.Equal(t, `{"id":1}`, v)
}

func TestFileStore_Sealed(t *testing.T) {
	key, err := localstore.ParseKey(testKeyHex)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "store.sealed")

	store, err := localstore.OpenFileStore(path, localstore.WithSealKey(key))
	require.NoError(t, err)
	require.NoError(t, store.Set(localstore.KeyAccessToken, "secret-token"))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(blob), "secret-token")

	reopened, err := localstore.OpenFileStore(path, localstore.WithSealKey(key))
	require.NoError(t, err)
	require.Equal(t, "secret-token", localstore.GetString(reopened, localstore.KeyAccessToken))

	wrongKey, err := localstore.ParseKey("ff" + testKeyHex[2:])
	require.NoError(t, err)
	_, err = localstore.OpenFileStore(path, localstore.WithSealKey(wrongKey))
	require.ErrorIs(t, err, errors.ErrSealedStore)
}

func TestParseKey(t *testing.T) {
	_, err := localstore.ParseKey("zz")
	require.Error(t, err)

	_, err = localstore.ParseKey("0102")
	require.Error(t, err)
	require.Contains(t, err.Error(), "32 bytes")
}

func TestProfiles_Isolation(t *testing.T) {
	sqliteProfiles, err := localstore.OpenSQLiteProfiles(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteProfiles.Close() })

	registries := map[string]localstore.Profiles{
		"memory": localstore.NewMemoryProfiles(),
		"sqlite": sqliteProfiles,
	}

	for name, profiles := range registries {
		t.Run(name, func(t *testing.T) {
			_, err := profiles.Open("")
			require.ErrorIs(t, err, errors.ErrProfileNotFound)

			a, err := profiles.Open("browser-a")
			require.NoError(t, err)
			b, err := profiles.Open("browser-b")
			require.NoError(t, err)

			require.NoError(t, a.Set(localstore.KeyAccessToken, "token-a"))
			require.False(t, localstore.Has(b, localstore.KeyAccessToken))

			again, err := profiles.Open("browser-a")
			require.NoError(t, err)
			require.Equal(t, "token-a", localstore.GetString(again, localstore.KeyAccessToken))

			require.NoError(t, b.Set(localstore.KeyUser, "{}"))
			require.NoError(t, a.Clear())
			require.True(t, localstore.Has(b, localstore.KeyUser))

			require.NoError(t, profiles.Delete("browser-b"))
			fresh, err := profiles.Open("browser-b")
			require.NoError(t, err)
			require.False(t, localstore.Has(fresh, localstore.KeyUser))
		})
	}
}
