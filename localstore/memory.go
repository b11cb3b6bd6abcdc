package localstore

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-chat-frontend/internal/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values = make(map[string]string)
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

var _ Profiles = (*MemoryProfiles)(nil)

// MemoryProfiles keeps a MemoryStore per profile ID
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]*MemoryStore
}

// NewMemoryProfiles creates an empty in-memory profile registry
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{
		profiles: make(map[string]*MemoryStore),
	}
}

// Open returns the store for profileID, creating it on first use
func (p *MemoryProfiles) Open(profileID string) (Store, error) {
	if profileID == "" {
		return nil, errors.Wrapf(errors.ErrProfileNotFound, "[MemoryProfiles Open] profileID is required")
	}

	p.mu.RLock()
	store, ok := p.profiles[profileID]
	p.mu.RUnlock()
	if ok {
		return store, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Another request may have created it between the locks
	if store, ok := p.profiles[profileID]; ok {
		return store, nil
	}
	store = NewMemoryStore()
	p.profiles[profileID] = store
	return store, nil
}

// Delete drops a profile and everything stored in it
func (p *MemoryProfiles) Delete(profileID string) error {
	if profileID == "" {
		return errors.Wrapf(errors.ErrProfileNotFound, "[MemoryProfiles Delete] profileID is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.profiles, profileID)
	return nil
}
