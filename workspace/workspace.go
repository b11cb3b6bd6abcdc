// Package workspace binds one client's local store, cookie mirror and backend client to an auth
// manager and a chat manager. There is no package-level state: every client gets its own.
package workspace

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/chat"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/localstore"
)

type Workspace struct {
	Auth *auth.Manager
	Chat *chat.Manager

	store   localstore.Store
	cookies auth.CookieJar
}

// New wires the managers together and restores them from store. The client's 401 hook is
// pointed at the auth manager, so it must not be shared between workspaces.
func New(store localstore.Store, cookies auth.CookieJar, client *api.Client, options ...auth.ManagerOption) (*Workspace, error) {
	if client == nil {
		return nil, errors.New("[workspace New] client is required")
	}

	authManager, err := auth.NewManager(client, store, cookies, options...)
	if err != nil {
		return nil, fmt.Errorf("[workspace New] %w", err)
	}
	chatManager, err := chat.NewManager(client, store)
	if err != nil {
		return nil, fmt.Errorf("[workspace New] %w", err)
	}
	client.SetUnauthorizedHandler(authManager.HandleUnauthorized)

	authManager.RestoreSession()

	return &Workspace{
		Auth:    authManager,
		Chat:    chatManager,
		store:   store,
		cookies: cookies,
	}, nil
}

// Login signs in and re-reads the chat mirror, which the login response has just overwritten.
func (w *Workspace) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	resp, err := w.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	w.Chat.Restore()
	return resp, nil
}

// Teardown logs out and forgets the conversation. It returns the sign-in route.
func (w *Workspace) Teardown() string {
	target := w.Auth.Logout()
	w.Chat.Drop()
	return target
}

func (w *Workspace) Store() localstore.Store {
	return w.store
}

func (w *Workspace) Cookies() auth.CookieJar {
	return w.cookies
}
