// Package localstore provides the client-side key-value persistence that survives reloads:
// the place where tokens, the user snapshot and the chat mirror live between requests.
package localstore

import (
	"encoding/json"
	"fmt"
)

// Keys written by the auth and chat state managers
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyChatSessions = "chat_sessions"
	KeyClaimUploads = "claim_uploads"
)

// Store is a string keyed, string valued persistence. Get returns errors.ErrNotFound for
// a missing key.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
	Keys() ([]string, error)
}

// Profiles hands out one Store per client profile (one per browser for the web front-end).
type Profiles interface {
	Open(profileID string) (Store, error)
	Delete(profileID string) error
}

// GetJSON decodes the value stored under key into v.
func GetJSON(s Store, key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("[localstore GetJSON] decode %q: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("[localstore SetJSON] encode %q: %w", key, err)
	}
	return s.Set(key, string(raw))
}

// Has reports whether key holds a value.
func Has(s Store, key string) bool {
	_, err := s.Get(key)
	return err == nil
}

// GetString returns the value for key or "" when it is missing or unreadable.
func GetString(s Store, key string) string {
	v, err := s.Get(key)
	if err != nil {
		return ""
	}
	return v
}
