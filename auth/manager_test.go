package auth_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "password123"
)

var testUser = api.User{
	ID:          7,
	FullName:    "Ada Lovelace",
	Email:       testEmail,
	PhoneNumber: "0123",
	Address:     "1 Analytical St",
}

// fakeBackend implements auth.Backend
type fakeBackend struct {
	loginResp    *api.LoginResponse
	loginErr     error
	registerResp *api.RegisterResponse
	registerErr  error
	loginCalls   []api.LoginRequest
	registered   []api.RegisterRequest
}

func (f *fakeBackend) Login(_ context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	f.loginCalls = append(f.loginCalls, req)
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Register(_ context.Context, req api.RegisterRequest) (*api.RegisterResponse, error) {
	f.registered = append(f.registered, req)
	return f.registerResp, f.registerErr
}

type testFixture struct {
	backend *fakeBackend
	store   *localstore.MemoryStore
	cookies *auth.MemoryCookies
	manager *auth.Manager
}

func setupTestFixture(t *testing.T, options ...auth.ManagerOption) *testFixture {
	t.Helper()

	f := &testFixture{
		backend: &fakeBackend{
			loginResp: &api.LoginResponse{
				Message:      "Login successful",
				Access:       "access-123",
				Refresh:      "refresh-456",
				User:         testUser,
				ChatSessions: json.RawMessage(`[{"session_id":"old"}]`),
			},
		},
		store:   localstore.NewMemoryStore(),
		cookies: auth.NewMemoryCookies(),
	}

	m, err := auth.NewManager(f.backend, f.store, f.cookies, options...)
	require.NoError(t, err)
	f.manager = m
	return f
}

func jwtWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "7",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestNewManager_RequiresDependencies(t *testing.T) {
	_, err := auth.NewManager(nil, localstore.NewMemoryStore(), auth.NewMemoryCookies())
	require.Error(t, err)
	_, err = auth.NewManager(&fakeBackend{}, nil, auth.NewMemoryCookies())
	require.Error(t, err)
	_, err = auth.NewManager(&fakeBackend{}, localstore.NewMemoryStore(), nil)
	require.Error(t, err)
}

func TestManager_LoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	require.Equal(t, auth.Anonymous, f.manager.State())

	resp, err := f.manager.Login(context.Background(), "  "+testEmail+" ", testPassword)
	require.NoError(t, err)
	require.Equal(t, "Login successful", resp.Message)
	require.Equal(t, []api.LoginRequest{{Email: testEmail, Password: testPassword}}, f.backend.loginCalls)

	// Cookie mirror for the route guard
	cookie, ok := f.cookies.Cookie(auth.CookieName)
	require.True(t, ok)
	require.Equal(t, "access-123", cookie)

	// Local store keys
	require.Equal(t, "access-123", localstore.GetString(f.store, localstore.KeyAccessToken))
	require.Equal(t, "refresh-456", localstore.GetString(f.store, localstore.KeyRefreshToken))
	var storedUser api.User
	require.NoError(t, localstore.GetJSON(f.store, localstore.KeyUser, &storedUser))
	require.Equal(t, testUser, storedUser)
	require.JSONEq(t, `[{"session_id":"old"}]`, localstore.GetString(f.store, localstore.KeyChatSessions))
	require.Equal(t, "[]", localstore.GetString(f.store, localstore.KeyClaimUploads))

	// In-memory state
	require.True(t, f.manager.IsAuthenticated())
	require.Equal(t, testUser, *f.manager.User())
	session, ok := f.manager.Session()
	require.True(t, ok)
	require.Equal(t, "refresh-456", session.RefreshToken)
	require.False(t, f.manager.IsLoading())
}

func TestManager_LoginUnauthorizedWritesNothing(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.loginResp = nil
	f.backend.loginErr = &api.AuthError{Message: "No active account found with the given credentials"}

	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	require.True(t, api.IsAuthError(err))
	require.Equal(t, "No active account found with the given credentials", err.Error())

	require.Equal(t, auth.Anonymous, f.manager.State())
	require.Nil(t, f.manager.User())
	keys, err := f.store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)
	_, ok := f.cookies.Cookie(auth.CookieName)
	require.False(t, ok)
}

func TestManager_LoginValidationSkipsBackend(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Login(context.Background(), "not-an-email", "short")
	var vErr *auth.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Fields, 2)
	require.Empty(t, f.backend.loginCalls)
}

func TestManager_ReloginOverwrites(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	other := api.User{ID: 8, FullName: "Grace Hopper", Email: "grace@example.com"}
	f.backend.loginResp = &api.LoginResponse{Access: "access-2", Refresh: "refresh-2", User: other}

	_, err = f.manager.Login(context.Background(), "grace@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, other, *f.manager.User())
	require.Equal(t, "access-2", localstore.GetString(f.store, localstore.KeyAccessToken))
	cookie, _ := f.cookies.Cookie(auth.CookieName)
	require.Equal(t, "access-2", cookie)
}

func TestManager_Logout(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, f.store.Set("unrelated", "value"))

	redirect := f.manager.Logout()
	require.Equal(t, auth.SignInPath, redirect)

	keys, err := f.store.Keys()
	require.NoError(t, err)
	require.Empty(t, keys)
	_, ok := f.cookies.Cookie(auth.CookieName)
	require.False(t, ok)
	require.Equal(t, auth.Anonymous, f.manager.State())
	require.Nil(t, f.manager.User())
}

func TestManager_Register(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.registerResp = &api.RegisterResponse{ID: 9, FullName: "Grace Hopper", Email: "grace@example.com"}

	resp, err := f.manager.Register(context.Background(), auth.RegistrationForm{
		FullName:    " Grace Hopper ",
		PhoneNumber: "555-0100",
		Address:     "Navy Yard",
		Email:       "grace@example.com",
		Password:    testPassword,
		AcceptTerms: true,
	})
	require.NoError(t, err)
	require.Equal(t, int64(9), resp.ID)
	require.Equal(t, "Grace Hopper", f.backend.registered[0].FullName)

	// Registration never authenticates
	require.Equal(t, auth.Anonymous, f.manager.State())
	keys, _ := f.store.Keys()
	require.Empty(t, keys)
}

func TestManager_RegisterFailures(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.manager.Register(context.Background(), auth.RegistrationForm{Email: "grace@example.com"})
	var vErr *auth.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Empty(t, f.backend.registered)

	f.backend.registerErr = &api.RequestError{StatusCode: 400, Message: "email: user with this email already exists."}
	_, err = f.manager.Register(context.Background(), auth.RegistrationForm{
		FullName: "Grace", PhoneNumber: "555", Address: "Navy", Email: "grace@example.com", Password: testPassword, AcceptTerms: true,
	})
	require.EqualError(t, err, "email: user with this email already exists.")
}

func TestManager_RestoreSession(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Equal(t, auth.Anonymous, f.manager.RestoreSession())
	})

	t.Run("stored session is trusted without a backend call", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.manager.Login(context.Background(), testEmail, testPassword)
		require.NoError(t, err)

		// A fresh cookie jar, as after a server restart
		cookies := auth.NewMemoryCookies()
		restored, err := auth.NewManager(f.backend, f.store, cookies)
		require.NoError(t, err)
		require.Equal(t, auth.Authenticated, restored.RestoreSession())
		require.Equal(t, testUser, *restored.User())
		require.Len(t, f.backend.loginCalls, 1)

		token, ok := cookies.Cookie(auth.CookieName)
		require.True(t, ok)
		require.Equal(t, "access-123", token)
	})

	t.Run("user without token", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, localstore.SetJSON(f.store, localstore.KeyUser, testUser))
		require.Equal(t, auth.Anonymous, f.manager.RestoreSession())
		_, ok := f.cookies.Cookie(auth.CookieName)
		require.False(t, ok)
	})

	t.Run("unreadable user", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.store.Set(localstore.KeyUser, "{broken"))
		require.NoError(t, f.store.Set(localstore.KeyAccessToken, "opaque"))
		require.Equal(t, auth.Anonymous, f.manager.RestoreSession())
	})

	t.Run("expired jwt is dropped", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		f := setupTestFixture(t, auth.WithNowTime(func() time.Time { return now }))
		require.NoError(t, localstore.SetJSON(f.store, localstore.KeyUser, testUser))
		require.NoError(t, f.store.Set(localstore.KeyAccessToken, jwtWithExpiry(t, now.Add(-time.Minute))))
		require.NoError(t, f.store.Set(localstore.KeyRefreshToken, "refresh"))
		require.NoError(t, f.store.Set(localstore.KeyChatSessions, `{"history":[],"sessionId":null}`))
		f.cookies.SetCookie(auth.CookieName, "stale")

		require.Equal(t, auth.Anonymous, f.manager.RestoreSession())
		require.False(t, localstore.Has(f.store, localstore.KeyAccessToken))
		require.False(t, localstore.Has(f.store, localstore.KeyUser))
		require.True(t, localstore.Has(f.store, localstore.KeyChatSessions))
		_, ok := f.cookies.Cookie(auth.CookieName)
		require.False(t, ok)
	})

	t.Run("live jwt is kept", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		f := setupTestFixture(t, auth.WithNowTime(func() time.Time { return now }))
		exp := now.Add(time.Hour)
		require.NoError(t, localstore.SetJSON(f.store, localstore.KeyUser, testUser))
		require.NoError(t, f.store.Set(localstore.KeyAccessToken, jwtWithExpiry(t, exp)))

		require.Equal(t, auth.Authenticated, f.manager.RestoreSession())
		got, ok := f.manager.TokenExpiry()
		require.True(t, ok)
		require.Equal(t, exp.Unix(), got.Unix())
	})
}

func TestManager_HandleUnauthorized(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.manager.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	f.manager.HandleUnauthorized()

	require.Equal(t, auth.Anonymous, f.manager.State())
	require.False(t, localstore.Has(f.store, localstore.KeyUser))
	require.False(t, localstore.Has(f.store, localstore.KeyAccessToken))
	_, ok := f.cookies.Cookie(auth.CookieName)
	require.False(t, ok)

	_, ok = f.manager.TokenExpiry()
	require.False(t, ok)
}

func TestState_String(t *testing.T) {
	require.Equal(t, "anonymous", auth.Anonymous.String())
	require.Equal(t, "authenticated", auth.Authenticated.String())
}
