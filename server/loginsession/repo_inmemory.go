package loginsession

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var _ Repo = (*InMemoryRepo)(nil)

type entry struct {
	session  *Session
	lastSeen atomic.Int64 // unix nanoseconds
}

// InMemoryRepo keeps one Session per profile. Sessions idle for longer than the idle timeout
// are dropped the next time a session is created; their profile store is left alone, so the
// next request rebuilds the session from it.
type InMemoryRepo struct {
	mu          sync.RWMutex
	factory     Factory
	idleTimeout time.Duration
	nowTime     func() time.Time
	sessions    map[string]*entry // profileID -> entry
}

// RepoOption defines a function type to modify the InMemoryRepo instance.
type RepoOption func(*InMemoryRepo)

// WithIdleTimeout sets how long an unused session is kept. Zero keeps sessions until Delete.
func WithIdleTimeout(idleTimeout time.Duration) RepoOption {
	return func(r *InMemoryRepo) {
		r.idleTimeout = idleTimeout
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RepoOption {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory repository that builds missing sessions with factory
func NewInMemoryRepo(factory Factory, options ...RepoOption) *InMemoryRepo {
	r := &InMemoryRepo{
		factory:  factory,
		nowTime:  time.Now,
		sessions: make(map[string]*entry),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// GetOrCreate returns the profile's session, building it on first use
func (r *InMemoryRepo) GetOrCreate(profileID string) (*Session, error) {
	if profileID == "" {
		return nil, fmt.Errorf("profileID is required")
	}
	now := r.nowTime()

	r.mu.RLock()
	e, ok := r.sessions[profileID]
	r.mu.RUnlock()
	if ok {
		e.lastSeen.Store(now.UnixNano())
		return e.session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request may have built it while we waited for the lock
	if e, ok := r.sessions[profileID]; ok {
		e.lastSeen.Store(now.UnixNano())
		return e.session, nil
	}

	r.evictIdle(now)

	session, err := r.factory(profileID)
	if err != nil {
		return nil, fmt.Errorf("[loginsession GetOrCreate] %w", err)
	}
	e = &entry{session: session}
	e.lastSeen.Store(now.UnixNano())
	r.sessions[profileID] = e
	return session, nil
}

// Delete forgets a live session. Its profile store is left alone.
func (r *InMemoryRepo) Delete(profileID string) error {
	if profileID == "" {
		return fmt.Errorf("profileID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, profileID)
	return nil
}

// Len returns the number of live sessions
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// evictIdle drops sessions not seen since now-idleTimeout. Caller holds r.mu.
func (r *InMemoryRepo) evictIdle(now time.Time) {
	if r.idleTimeout <= 0 {
		return
	}
	cutoff := now.Add(-r.idleTimeout).UnixNano()
	for profileID, e := range r.sessions {
		if e.lastSeen.Load() < cutoff {
			delete(r.sessions, profileID)
			log.Debug().Str("profile_id", profileID).Msg("evicted idle session")
		}
	}
}
