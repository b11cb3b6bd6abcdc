// Package api is the HTTP/JSON client for the chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const maxErrorBody = 64 << 10

// Client talks to the backend on behalf of one client profile. Authenticated calls take their
// bearer token from the profile's local store at call time.
type Client struct {
	baseURL        string
	store          localstore.Store
	httpClient     *http.Client
	public         *http.Client
	authenticated  *http.Client
	onUnauthorized func()
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying client; its Transport is reused for authenticated calls.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every request. Zero keeps the http.Client default. Apply it after
// WithHTTPClient.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}
		withTimeout := *c.httpClient
		withTimeout.Timeout = timeout
		c.httpClient = &withTimeout
	}
}

// WithUnauthorizedHandler is called after a 401 purged the stored tokens
func WithUnauthorizedHandler(fn func()) ClientOption {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a backend client bound to store.
func New(baseURL string, store localstore.Store, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		store:      store,
		httpClient: &http.Client{},
	}
	for _, opt := range options {
		opt(c)
	}

	// Copy so the caller's client is never mutated
	public := *c.httpClient
	c.public = &public

	base := c.public.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.authenticated = &http.Client{
		Timeout:       c.public.Timeout,
		Jar:           c.public.Jar,
		CheckRedirect: c.public.CheckRedirect,
		Transport: &oauth2.Transport{
			Source: NewStoreTokenSource(store),
			Base:   base,
		},
	}
	return c
}

// SetUnauthorizedHandler replaces the 401 hook after construction
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// Send issues an unauthenticated JSON request and decodes the answer into out (which may be nil).
func (c *Client) Send(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, c.public, method, path, body, out)
}

// SendAuthenticated is Send with the bearer token attached. It fails with
// errors.ErrNoAccessToken before touching the network when no token is stored.
func (c *Client) SendAuthenticated(ctx context.Context, method, path string, body, out any) error {
	if localstore.GetString(c.store, localstore.KeyAccessToken) == "" {
		return errors.ErrNoAccessToken
	}
	return c.do(ctx, c.authenticated, method, path, body, out)
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.Send(ctx, http.MethodPost, PathLogin, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.Send(ctx, http.MethodPost, PathRegister, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat sends one user turn and returns the full transcript
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.SendAuthenticated(ctx, http.MethodPost, PathChat, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[api %s %s] encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("[api %s %s] build request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errors.ErrNoAccessToken) {
			return errors.ErrNoAccessToken
		}
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.purgeTokens()
		return &AuthError{Message: errorMessage(resp.StatusCode, respBody)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		reqErr := statusError(resp, respBody)
		log.Debug().Int("status", resp.StatusCode).Str("path", path).Str("message", reqErr.Message).Msg("backend rejected request")
		return reqErr
	}

	if out == nil {
		return nil
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &RequestError{StatusCode: resp.StatusCode, Message: DefaultErrorMessage, Err: fmt.Errorf("[api %s %s] decode response: %w", method, path, err)}
	}
	return nil
}

// purgeTokens drops the token pair and tells the owner to send the user back to sign-in
func (c *Client) purgeTokens() {
	for _, key := range []string{localstore.KeyAccessToken, localstore.KeyRefreshToken} {
		if err := c.store.Remove(key); err != nil {
			log.Err(err).Str("key", key).Msg("failed to purge token after 401")
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
