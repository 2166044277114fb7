package token

import (
	"sync"
	"time"
)

// UsedStateCache remembers consumed OAuth states so a callback URL cannot be replayed.
type UsedStateCache interface {
	// Use records jti as consumed until exp. It returns false if jti was already used.
	Use(jti string, exp time.Time) bool
	Cleanup(now time.Time) // Remove expired entries
}

// InMemoryUsedStateCache is a simple in-memory implementation
type InMemoryUsedStateCache struct {
	used map[string]time.Time
	mu   sync.Mutex
}

func NewInMemoryUsedStateCache() *InMemoryUsedStateCache {
	return &InMemoryUsedStateCache{
		used: make(map[string]time.Time),
	}
}

func (c *InMemoryUsedStateCache) Use(jti string, exp time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.used[jti]; exists {
		return false
	}
	c.used[jti] = exp
	return true
}

func (c *InMemoryUsedStateCache) Cleanup(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for jti, exp := range c.used {
		if now.After(exp) {
			delete(c.used, jti)
		}
	}
}
