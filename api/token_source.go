package api

import (
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*StoreTokenSource)(nil)

// StoreTokenSource reads the access token from the local store every time it is asked, so a
// logout or a new login between two calls is always respected.
type StoreTokenSource struct {
	store localstore.Store
}

// NewStoreTokenSource returns a token source backed by store
func NewStoreTokenSource(store localstore.Store) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

// Token returns the stored bearer token, or errors.ErrNoAccessToken when none is stored.
func (s *StoreTokenSource) Token() (*oauth2.Token, error) {
	access := localstore.GetString(s.store, localstore.KeyAccessToken)
	if access == "" {
		return nil, errors.ErrNoAccessToken
	}
	return &oauth2.Token{
		AccessToken:  access,
		TokenType:    "Bearer",
		RefreshToken: localstore.GetString(s.store, localstore.KeyRefreshToken),
	}, nil
}
