package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	// Sign in & sign up
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInPageHandler(), s.HTMLMiddleWare(s.WithProfileCookie)...))
	s.RegisterRouteHandler("POST "+RouteSignIn, ChainMiddleware(s.SignInSubmissionHandler(), s.HTMLMiddleWare(s.WithProfile)...))
	s.RegisterRouteHandler("GET "+RouteSignUp, ChainMiddleware(s.SignUpPageHandler(), s.HTMLMiddleWare(s.WithProfileCookie)...))
	s.RegisterRouteHandler("POST "+RouteSignUp, ChainMiddleware(s.SignUpSubmissionHandler(), s.HTMLMiddleWare(s.WithProfile)...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare(s.WithProfile)...))

	// Chat (guarded by the session cookie)
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.ChatPageHandler(), s.HTMLMiddleWare(s.RequireSessionCookie(), s.WithProfile)...))
	s.RegisterRouteHandler("POST "+RouteChat, ChainMiddleware(s.ChatSubmissionHandler(), s.HTMLMiddleWare(s.RequireSessionCookie(), s.WithProfile)...))
	s.RegisterRouteHandler("POST "+RouteChatReset, ChainMiddleware(s.ChatResetHandler(), s.HTMLMiddleWare(s.RequireSessionCookie(), s.WithProfile)...))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET /{file}", ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		err := StreamFile(w, r, filePath)
		if err != nil {
			logError(r.Method, filePath, err)
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

// HealthHandler answers liveness probes
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
