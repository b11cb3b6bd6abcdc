package loginsession

import (
	"github.com/jrsteele09/go-chat-frontend/auth"
	"github.com/jrsteele09/go-chat-frontend/workspace"
)

// Session is the live state of one browser profile: its workspace and the cookie values the
// workspace's auth manager last asked for.
type Session struct {
	ProfileID string
	Workspace *workspace.Workspace
	Cookies   *auth.MemoryCookies
}

// Factory builds the session for a profile seen for the first time since start up, or for the
// first time since its last session was evicted
type Factory func(profileID string) (*Session, error)

type Repo interface {
	GetOrCreate(profileID string) (*Session, error)
	Delete(profileID string) error
	Len() int
}
