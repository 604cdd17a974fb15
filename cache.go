package folio

import (
	"database/sql"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = sql.ErrNoRows

// PageCache is an in-memory cache of rendered pages with a TTL. Pages are
// derived from an immutable content snapshot, so a page stays valid until it
// expires or the snapshot is replaced.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]cachedPage
	ttl   time.Duration
	now   func() time.Time
}

type cachedPage struct {
	body    []byte
	fetched time.Time
}

// NewPageCache creates a PageCache. A ttl of zero or less disables caching.
func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{pages: make(map[string]cachedPage), ttl: ttl, now: time.Now}
}

func (c *PageCache) valid(p cachedPage, ok bool) bool {
	return ok && c.now().Sub(p.fetched) < c.ttl
}

// Invalidate clears the cache so the next read renders afresh.
func (c *PageCache) Invalidate() {
	c.mu.Lock()
	c.pages = make(map[string]cachedPage)
	c.mu.Unlock()
}

// Len returns the number of cached pages, expired ones included.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// Get returns the page stored under key, calling render to fill it when it
// is missing or stale. It tries a read lock first; only takes a write lock
// if a render is needed. Errors are returned and never cached.
func (c *PageCache) Get(key string, render func() ([]byte, error)) ([]byte, error) {
	if c.ttl <= 0 {
		return render()
	}

	c.mu.RLock()
	p, ok := c.pages[key]
	if c.valid(p, ok) {
		c.mu.RUnlock()
		return p.body, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pages[key]; c.valid(p, ok) {
		return p.body, nil
	}
	body, err := render()
	if err != nil {
		return nil, err
	}
	c.pages[key] = cachedPage{body: body, fetched: c.now()}
	return body, nil
}
