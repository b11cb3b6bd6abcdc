package server

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/server/loginsession"
)

const (
	// profileCookieName names the browser's local store profile
	profileCookieName = "client_id"
)

func (s *Server) secureCookies(r *http.Request) bool {
	return s.config.GetSecureCookies() || getScheme(r) == "https"
}

func (s *Server) SetProfileCookie(w http.ResponseWriter, r *http.Request, profileID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookieName,
		Value:    profileID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetProfileCookieMaxAge().Seconds()),
	})
}

// SyncSessionCookie copies the auth manager's cookie mirror onto the response. It must run
// before the handler writes its status.
func (s *Server) SyncSessionCookie(w http.ResponseWriter, r *http.Request, session *loginsession.Session) {
	var current string
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		current = cookie.Value
	}

	token, ok := session.Cookies.Cookie(auth.CookieName)
	switch {
	case ok && token != current:
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies(r),
			SameSite: http.SameSiteLaxMode,
		})
	case !ok && current != "":
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies(r),
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, path+"?error="+url.QueryEscape(errorMsg))
}

// redirectWithNotice carries a success message to the next page
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, path+"?notice="+url.QueryEscape(notice))
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
