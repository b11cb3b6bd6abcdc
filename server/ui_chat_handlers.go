package server

import (
	"net/http"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/rs/zerolog/log"
)

// ChatPageData is the model for the chat page
type ChatPageData struct {
	PageData
	User      *api.User
	Messages  []api.ChatMessage
	SessionID string
}

// ChatPageHandler renders the conversation (GET /)
func (s *Server) ChatPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("chat.html")

	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		ws := session.Workspace

		// A cookie without a stored session, e.g. after a 401 or a wiped profile store
		if !ws.Auth.IsAuthenticated() {
			s.SyncSessionCookie(w, r, session)
			redirectSuccess(w, r, RouteSignIn)
			return
		}

		data := ChatPageData{
			PageData:  s.pageData(r),
			User:      ws.Auth.User(),
			Messages:  ws.Chat.History(),
			SessionID: ws.Chat.SessionID(),
		}
		renderTemplate(w, tmpl, http.StatusOK, data)
	}
}

// ChatSubmissionHandler sends one message (POST /chat)
func (s *Server) ChatSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		err := session.Workspace.Chat.SendMessage(r.Context(), r.FormValue("message"))
		s.SyncSessionCookie(w, r, session)
		if err != nil {
			if api.IsAuthError(err) || errors.Is(err, errors.ErrNoAccessToken) {
				log.Info().Str("profile_id", session.ProfileID).Msg("chat rejected, signing out")
				redirectWithError(w, r, RouteSignIn, err.Error())
				return
			}
			redirectWithError(w, r, RouteHome, messageOr(err, "Something went wrong"))
			return
		}
		redirectSuccess(w, r, RouteHome)
	}
}

// ChatResetHandler starts a new conversation (POST /chat/reset)
func (s *Server) ChatResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		session.Workspace.Chat.ResetChat()
		redirectSuccess(w, r, RouteHome)
	}
}
