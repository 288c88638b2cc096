package google

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expirySkew invalidates cached tokens slightly before their server-side
// expiry to avoid racing the deadline.
const expirySkew = 30 * time.Second

// tokenCache holds one in-memory access-token slot per user session.
// The slot is cleared on 401 and repopulated from the refresh token.
type tokenCache struct {
	mu    sync.Mutex
	slots map[int]*tokenSlot
}

type tokenSlot struct {
	mu    sync.Mutex
	token *oauth2.Token
}

func newTokenCache() *tokenCache {
	return &tokenCache{slots: map[int]*tokenSlot{}}
}

func (c *tokenCache) slot(userId int) *tokenSlot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[userId]
	if !ok {
		s = &tokenSlot{}
		c.slots[userId] = s
	}
	return s
}

// get returns the cached token for the user or calls refresh to obtain one.
// The per-slot lock is held across the refresh, so concurrent requests for
// the same user share one exchange (single-flight) instead of stampeding
// the token endpoint.
func (c *tokenCache) get(userId int, refresh func() (*oauth2.Token, error)) (string, error) {
	s := c.slot(userId)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != nil && (s.token.Expiry.IsZero() || time.Until(s.token.Expiry) > expirySkew) {
		return s.token.AccessToken, nil
	}

	token, err := refresh()
	if err != nil {
		return "", err
	}
	s.token = token
	return token.AccessToken, nil
}

// invalidate clears the cached token; the next get refreshes.
func (c *tokenCache) invalidate(userId int) {
	s := c.slot(userId)
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}
