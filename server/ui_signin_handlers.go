package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/rs/zerolog/log"
)

// SignInPageHandler displays the sign-in page (GET /signin)
func (s *Server) SignInPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := s.pageData(r)
		data.Form = map[string]string{"email": r.URL.Query().Get("email")}
		renderTemplate(w, tmpl, http.StatusOK, data)
	}
}

// SignInSubmissionHandler processes the sign-in form (POST /signin)
func (s *Server) SignInSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("signin.html")

	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		resp, err := session.Workspace.Login(r.Context(), email, password)
		if err != nil {
			var validationErr *auth.ValidationError
			if errors.As(err, &validationErr) {
				data := s.pageData(r)
				data.Fields = validationErr.Fields
				data.Form = map[string]string{"email": email}
				renderTemplate(w, tmpl, http.StatusUnprocessableEntity, data)
				return
			}
			log.Debug().Err(err).Str("profile_id", session.ProfileID).Msg("sign in failed")
			redirectWithError(w, r, RouteSignIn, messageOr(err, "Invalid credentials"))
			return
		}

		s.SyncSessionCookie(w, r, session)
		redirectWithNotice(w, r, RouteHome, firstNonEmpty(resp.Message, "Login successful!"))
	}
}

// LogoutHandler ends the session and drops the profile's local store (POST /logout). The
// browser keeps its client_id; its next request starts from an empty profile.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		target := session.Workspace.Teardown()
		s.SyncSessionCookie(w, r, session)
		if err := s.sessions.Delete(session.ProfileID); err != nil {
			log.Err(err).Str("profile_id", session.ProfileID).Msg("failed to forget session")
		}
		if err := s.profiles.Delete(session.ProfileID); err != nil {
			log.Err(err).Str("profile_id", session.ProfileID).Msg("failed to delete profile store")
		}
		redirectSuccess(w, r, target)
	}
}

// messageOr returns the error's message, or fallback when it has none
func messageOr(err error, fallback string) string {
	if errors.Is(err, errors.ErrRequestInFlight) {
		return "Please wait for the current request to finish"
	}
	return firstNonEmpty(err.Error(), fallback)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
