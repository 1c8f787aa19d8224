package passcrypt

import "sync"

// PublicKeyCache holds at most one server public key for the lifetime of a
// KeyExchangeClient.
//
// Every Clear starts a new generation. A fetch records the generation it
// started in and passes it to Store, which refuses to write when a Clear has
// happened since. This keeps a slow fetch from reinstating a key the caller
// already discarded.
type PublicKeyCache struct {
	mu  sync.RWMutex
	key PublicKey
	ok  bool
	gen uint64
}

// NewPublicKeyCache returns an empty cache.
func NewPublicKeyCache() *PublicKeyCache {
	return &PublicKeyCache{}
}

// Load returns the cached key, the current generation and whether a key is
// present.
func (c *PublicKeyCache) Load() (PublicKey, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key, c.gen, c.ok
}

// Store caches key if gen is still the current generation. It reports
// whether the key was stored.
func (c *PublicKeyCache) Store(key PublicKey, gen uint64) bool {
	if key.IsZero() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.key = key
	c.ok = true
	return true
}

// Clear empties the cache and starts a new generation.
func (c *PublicKeyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = PublicKey{}
	c.ok = false
	c.gen++
}
