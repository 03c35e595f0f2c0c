package pricing

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCacheTTL is how long a resolved price stays fresh.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	price     decimal.NullDecimal
	expiresAt time.Time
}

// Cache is a process-local TTL memo of resolved prices. Unresolved prices are
// cached like numeric ones. Expired entries are purged on read; there is no
// background sweep.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// CacheOption configures optional cache behavior.
type CacheOption func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Get returns the cached price and true while the entry is fresh. Once now reaches
// the entry's expiry the entry is removed and Get reports a miss.
func (c *Cache) Get(sku string) (decimal.NullDecimal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sku]
	if !ok {
		return decimal.NullDecimal{}, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, sku)
		return decimal.NullDecimal{}, false
	}
	return entry.price, true
}

// Put stores price with a fresh TTL.
func (c *Cache) Put(sku string, price decimal.NullDecimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sku] = cacheEntry{price: price, expiresAt: c.now().Add(c.ttl)}
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
