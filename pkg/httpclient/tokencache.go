package httpclient

import "sync"

// identityKey identifies a cache entry. For the password grant it is the
// username/password pair; for client credentials it degenerates to the client
// id with an empty secret.
type identityKey struct {
	name   string
	secret string
}

// TokenCache stores bearer tokens keyed by identity. It has no TTL tracking:
// an entry, once populated, is reused until RefreshToken overwrites it or
// Reset clears the cache. A stale token simply surfaces as a 401 downstream.
//
// Concurrent reads are safe. Two goroutines fetching a token for the same new
// identity may both hit the token endpoint; the duplicate fetch is tolerated
// and the last write wins.
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[identityKey]string
}

// NewTokenCache creates an empty cache. Pass the same cache to several
// providers to share tokens between them; by default all providers in a
// process share DefaultTokenCache.
func NewTokenCache() *TokenCache {
	return &TokenCache{tokens: make(map[identityKey]string)}
}

// DefaultTokenCache is the process-wide cache used when no explicit cache is
// configured on a BearerTokenProvider.
var DefaultTokenCache = NewTokenCache()

func (c *TokenCache) get(key identityKey) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tok, ok := c.tokens[key]
	return tok, ok
}

func (c *TokenCache) put(key identityKey, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[key] = token
}

// Len returns the number of cached tokens.
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

// Reset drops every cached token. Intended for test harnesses; the library
// never invalidates entries on its own.
func (c *TokenCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = make(map[identityKey]string)
}
