package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/internal/config"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/jrsteele09/go-chat-frontend/server/loginsession"
	"github.com/jrsteele09/go-chat-frontend/workspace"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	profiles   localstore.Profiles
	sessions   loginsession.Repo
	httpClient *http.Client
	nowTime    func() time.Time
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithHTTPClient sets the client used for backend calls
func WithHTTPClient(httpClient *http.Client) ServerOption {
	return func(s *Server) {
		s.httpClient = httpClient
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// New creates the web front-end. Each browser profile's local store comes from profiles.
func New(config config.Config, profiles localstore.Profiles, options ...ServerOption) (*Server, error) {
	if profiles == nil {
		return nil, fmt.Errorf("[Server New] profiles are required")
	}

	s := &Server{
		mux:        http.NewServeMux(),
		config:     config,
		profiles:   profiles,
		httpClient: &http.Client{},
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env = config.GetEnv()
	s.sessions = loginsession.NewInMemoryRepo(s.newSession,
		loginsession.WithIdleTimeout(config.GetSessionIdleTimeout()),
		loginsession.WithNowTime(s.nowTime),
	)

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// LiveSessions reports how many browser sessions are held in memory
func (s *Server) LiveSessions() int {
	return s.sessions.Len()
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// newSession opens the profile's store and builds its workspace
func (s *Server) newSession(profileID string) (*loginsession.Session, error) {
	store, err := s.profiles.Open(profileID)
	if err != nil {
		return nil, fmt.Errorf("[Server newSession] open profile store: %w", err)
	}

	client := api.New(s.config.GetAPIBaseURL(), store,
		api.WithHTTPClient(s.httpClient),
		api.WithTimeout(s.config.GetAPITimeout()),
	)
	cookies := auth.NewMemoryCookies()
	ws, err := workspace.New(store, cookies, client, auth.WithNowTime(s.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server newSession] %w", err)
	}

	log.Debug().Str("profile_id", profileID).Bool("authenticated", ws.Auth.IsAuthenticated()).Msg("profile loaded")
	return &loginsession.Session{
		ProfileID: profileID,
		Workspace: ws,
		Cookies:   cookies,
	}, nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func logError(method, path string, err error) {
	log.Error().Msgf("[%-19s] %s %s", colourMethod(method), path, Red+err.Error()+ResetColor)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
