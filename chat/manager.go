// Package chat holds the client's view of the current conversation. The transcript is always
// the last full list the backend returned; nothing is appended locally.
package chat

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/jrsteele09/go-chat-frontend/api"
	"github.com/jrsteele09/go-chat-frontend/internal/errors"
	"github.com/jrsteele09/go-chat-frontend/internal/utils"
	"github.com/jrsteele09/go-chat-frontend/localstore"
	"github.com/rs/zerolog/log"
)

// Backend is the part of the API client the manager needs
type Backend interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// Snapshot is the persisted mirror kept under localstore.KeyChatSessions
type Snapshot struct {
	History   []api.ChatMessage `json:"history"`
	SessionID *string           `json:"sessionId"`
}

type Manager struct {
	mu        sync.Mutex
	backend   Backend
	store     localstore.Store
	history   []api.ChatMessage
	sessionID string
	loading   bool
}

// NewManager creates a manager and rehydrates it from the store
func NewManager(backend Backend, store localstore.Store) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("[chat NewManager] backend is required")
	}
	if store == nil {
		return nil, errors.New("[chat NewManager] store is required")
	}

	m := &Manager{backend: backend, store: store}
	m.Restore()
	return m, nil
}

// Restore replaces the in-memory state with the persisted mirror, if there is a readable one.
// The login response stores a bare list under the same key; that shape is ignored.
func (m *Manager) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = nil
	m.sessionID = ""

	raw, err := m.store.Get(localstore.KeyChatSessions)
	if err != nil {
		return
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Debug().Err(err).Msg("ignoring chat mirror that is not a snapshot")
		return
	}
	m.history = snap.History
	if snap.SessionID != nil {
		m.sessionID = *snap.SessionID
	}
}

// SendMessage sends the trimmed text as one turn. It does nothing for blank text or while
// another send is in flight. On success the session id and the whole history are replaced by
// the backend's answer; on failure the history is untouched.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil
	}

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		log.Debug().Msg("send ignored, previous message still in flight")
		return nil
	}
	m.loading = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	resp, err := m.backend.Chat(ctx, api.ChatRequest{Content: content})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	changed := false
	if resp.Session != nil && resp.Session.SessionID != "" {
		m.sessionID = resp.Session.SessionID
		changed = true
	}
	if resp.AllMessages != nil {
		m.history = append([]api.ChatMessage(nil), resp.AllMessages...)
		changed = true
	}
	if changed {
		m.persist()
	}
	return nil
}

// ResetChat forgets the conversation and removes the persisted mirror
func (m *Manager) ResetChat() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = nil
	m.sessionID = ""
	if err := m.store.Remove(localstore.KeyChatSessions); err != nil {
		log.Err(err).Msg("failed to remove chat mirror")
	}
}

// Drop clears the in-memory conversation only. Used when the workspace is torn down and the
// store has already been wiped.
func (m *Manager) Drop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	m.sessionID = ""
}

// History returns a copy of the transcript
func (m *Manager) History() []api.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.ChatMessage(nil), m.history...)
}

// SessionID returns the tracked chat session, "" when there is none
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Snapshot returns the state in its persisted shape
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() Snapshot {
	snap := Snapshot{History: append([]api.ChatMessage{}, m.history...)}
	if m.sessionID != "" {
		snap.SessionID = utils.Ptr(m.sessionID)
	}
	return snap
}

// persist writes the mirror. Caller holds m.mu.
func (m *Manager) persist() {
	if err := localstore.SetJSON(m.store, localstore.KeyChatSessions, m.snapshot()); err != nil {
		log.Err(err).Msg("failed to persist chat mirror")
	}
}
