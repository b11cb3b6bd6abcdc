package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/server/loginsession"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the browser profile's *loginsession.Session
	ContextKeySession ContextKey = "session"
)

// RequireSessionCookie guards the chat pages: without a non-empty session cookie the browser
// goes to sign-in. The cookie's value is not checked here; a stale token is caught by the
// backend's 401 on the next call.
func (s *Server) RequireSessionCookie() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				redirectSuccess(w, r, RouteSignIn)
				return
			}
			next(w, r)
		}
	}
}

// WithProfileCookie makes sure the browser carries a client_id cookie without loading its
// session. Pages that only render a form use it.
func (s *Server) WithProfileCookie(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.profileID(w, r)
		next(w, r)
	}
}

// WithProfile resolves the browser's profile from its client_id cookie, issuing a new one
// to browsers without a valid id, and injects the profile's session into the context.
func (s *Server) WithProfile(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := s.profileID(w, r)

		session, err := s.sessions.GetOrCreate(profileID)
		if err != nil {
			logError(r.Method, r.URL.Path, err)
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeySession, session)
		next(w, r.WithContext(ctx))
	}
}

// profileID returns the request's profile ID, setting a new client_id cookie when it has none
func (s *Server) profileID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(profileCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}
	profileID := uuid.NewString()
	s.SetProfileCookie(w, r, profileID)
	return profileID
}

// sessionFromContext returns the session WithProfile injected
func sessionFromContext(ctx context.Context) *loginsession.Session {
	session, _ := ctx.Value(ContextKeySession).(*loginsession.Session)
	return session
}
