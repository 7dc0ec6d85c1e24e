package portal

import (
	"sync"
	"time"

	"zvgcli/pkg/contracts/domain"
)

// Cache memoizes per-state search results. A full state search takes the
// portal several seconds and the data changes slowly, so results are reused
// until the TTL expires. A TTL of zero disables caching.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	fetchedAt time.Time
	listings  []domain.Listing
}

// NewCache returns an empty cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a copy of the cached listings for the state code while they
// are still fresh.
func (c *Cache) Get(code string) ([]domain.Listing, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[code]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	out := make([]domain.Listing, len(e.listings))
	copy(out, e.listings)
	return out, true
}

// Put stores a copy of the listings for the state code.
func (c *Cache) Put(code string, listings []domain.Listing) {
	if c.ttl <= 0 {
		return
	}
	stored := make([]domain.Listing, len(listings))
	copy(stored, listings)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = cacheEntry{fetchedAt: c.now(), listings: stored}
}

// Invalidate drops the cached results for one state code.
func (c *Cache) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, code)
}

// Snapshot returns copies of all still-fresh cached result sets keyed by
// state code. Stale entries are left out, not evicted.
func (c *Cache) Snapshot() map[string][]domain.Listing {
	out := make(map[string][]domain.Listing)
	if c.ttl <= 0 {
		return out
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	for code, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			continue
		}
		listings := make([]domain.Listing, len(e.listings))
		copy(listings, e.listings)
		out[code] = listings
	}
	return out
}
