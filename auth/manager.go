// Package auth holds the client's authentication state: who is signed in, and the token pair
// mirrored into the local store and the session cookie.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/rs/zerolog/log"
)

// Navigation targets handed back to the caller
const (
	SignInPath = "/signin"
	HomePath   = "/"
)

// State of the session state machine
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Backend is the part of the API client the manager needs
type Backend interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
}

// Session is the authenticated client state
type Session struct {
	AccessToken  string
	RefreshToken string
	User         api.User
}

// Manager owns the Session. The local store is authoritative; the cookie is a read-only mirror
// for the route guard, written only from persist, clear and RestoreSession.
type Manager struct {
	mu      sync.Mutex
	backend Backend
	store   localstore.Store
	cookies CookieJar
	session *Session
	loading bool
	nowTime func() time.Time
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates an anonymous manager. Call RestoreSession to pick up a stored session.
func NewManager(backend Backend, store localstore.Store, cookies CookieJar, options ...ManagerOption) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("[auth NewManager] backend is required")
	}
	if store == nil {
		return nil, errors.New("[auth NewManager] store is required")
	}
	if cookies == nil {
		return nil, errors.New("[auth NewManager] cookies are required")
	}

	m := &Manager{
		backend: backend,
		store:   store,
		cookies: cookies,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Login validates the form, exchanges the credentials and on success stores the session.
// On any failure the manager and the store are left as they were.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	form := LoginForm{Email: strings.TrimSpace(email), Password: password}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if !m.begin() {
		return nil, errors.ErrRequestInFlight
	}
	defer m.end()

	resp, err := m.backend.Login(ctx, api.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		log.Debug().Err(err).Str("email", form.Email).Msg("login rejected")
		return nil, err
	}

	session := &Session{AccessToken: resp.Access, RefreshToken: resp.Refresh, User: resp.User}
	if err := m.persist(session, resp); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	log.Info().Int64("user_id", resp.User.ID).Msg("signed in")
	return resp, nil
}

// Logout clears the cookie and every local store key and returns the sign-in route.
func (m *Manager) Logout() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cookies.RemoveCookie(CookieName)
	if err := m.store.Clear(); err != nil {
		log.Err(err).Msg("failed to clear local store on logout")
	}
	m.session = nil
	return SignInPath
}

// Register creates the account. It never signs the user in; the caller goes to SignInPath.
func (m *Manager) Register(ctx context.Context, form RegistrationForm) (*api.RegisterResponse, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	if !m.begin() {
		return nil, errors.ErrRequestInFlight
	}
	defer m.end()

	resp, err := m.backend.Register(ctx, api.RegisterRequest{
		FullName:    strings.TrimSpace(form.FullName),
		PhoneNumber: strings.TrimSpace(form.PhoneNumber),
		Address:     strings.TrimSpace(form.Address),
		Email:       strings.TrimSpace(form.Email),
		Password:    form.Password,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RestoreSession rehydrates from the local store without asking the backend. The cached user
// is trusted until an authenticated call fails, except that a JWT access token whose exp has
// already passed is dropped straight away. A restored session puts the access token back into
// the cookie mirror.
func (m *Manager) RestoreSession() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil

	var user api.User
	if err := localstore.GetJSON(m.store, localstore.KeyUser, &user); err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			log.Warn().Err(err).Msg("ignoring unreadable stored user")
		}
		return Anonymous
	}

	access := localstore.GetString(m.store, localstore.KeyAccessToken)
	if access == "" {
		return Anonymous
	}
	if exp, ok := tokenExpiry(access); ok && !exp.After(m.nowTime()) {
		log.Info().Time("expired_at", exp).Msg("stored access token has expired")
		m.clear()
		return Anonymous
	}

	m.session = &Session{
		AccessToken:  access,
		RefreshToken: localstore.GetString(m.store, localstore.KeyRefreshToken),
		User:         user,
	}
	m.cookies.SetCookie(CookieName, access)
	return Authenticated
}

// HandleUnauthorized is the API client's 401 hook: the session is gone, back to Anonymous.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		log.Info().Int64("user_id", m.session.User.ID).Msg("session rejected by backend")
	}
	m.clear()
}

// State returns the current state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Anonymous
	}
	return Authenticated
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == Authenticated
}

// User returns a copy of the signed in user, or nil
func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	u := m.session.User
	return &u
}

// Session returns a copy of the current session
func (m *Manager) Session() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

// TokenExpiry reports when the current access token lapses, when it is a JWT carrying exp
func (m *Manager) TokenExpiry() (time.Time, bool) {
	s, ok := m.Session()
	if !ok {
		return time.Time{}, false
	}
	return tokenExpiry(s.AccessToken)
}

// IsLoading reports whether a login or registration is in flight
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) begin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading {
		return false
	}
	m.loading = true
	return true
}

func (m *Manager) end() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

// persist is the single write path for a new session: local store first, then the cookie mirror.
func (m *Manager) persist(session *Session, resp *api.LoginResponse) error {
	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("[auth persist] encode user: %w", err)
	}

	writes := []struct{ key, value string }{
		{localstore.KeyAccessToken, session.AccessToken},
		{localstore.KeyRefreshToken, session.RefreshToken},
		{localstore.KeyUser, string(user)},
		{localstore.KeyChatSessions, rawOrEmptyList(resp.ChatSessions)},
		{localstore.KeyClaimUploads, rawOrEmptyList(resp.ClaimUploads)},
	}
	for _, w := range writes {
		if err := m.store.Set(w.key, w.value); err != nil {
			return fmt.Errorf("[auth persist] store %s: %w", w.key, err)
		}
	}

	m.cookies.SetCookie(CookieName, session.AccessToken)
	return nil
}

// clear drops the session keys and the cookie. Caller holds m.mu.
func (m *Manager) clear() {
	m.cookies.RemoveCookie(CookieName)
	for _, key := range []string{localstore.KeyAccessToken, localstore.KeyRefreshToken, localstore.KeyUser} {
		if err := m.store.Remove(key); err != nil {
			log.Err(err).Str("key", key).Msg("failed to remove session key")
		}
	}
	m.session = nil
}

func rawOrEmptyList(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "[]"
	}
	return trimmed
}
