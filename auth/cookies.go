package auth

import "sync"

// CookieName is the session cookie the route guard checks
const CookieName = "token"

// CookieJar is the cookie side of the session mirror. The Manager is its only writer.
type CookieJar interface {
	SetCookie(name, value string)
	RemoveCookie(name string)
}

var _ CookieJar = (*MemoryCookies)(nil)

// MemoryCookies is a CookieJar for clients without a browser
type MemoryCookies struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryCookies() *MemoryCookies {
	return &MemoryCookies{values: make(map[string]string)}
}

func (c *MemoryCookies) SetCookie(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] = value
}

func (c *MemoryCookies) RemoveCookie(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, name)
}

// Cookie returns the value of a cookie and whether it is set
func (c *MemoryCookies) Cookie(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[name]
	return v, ok
}
