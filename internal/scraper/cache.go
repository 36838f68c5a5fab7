package scraper

import (
	"sync"
	"time"
)

// DefaultWikiCacheTTL is how long a wiki page name is reused
const DefaultWikiCacheTTL = 24 * time.Hour

// wikiCache holds wiki page names keyed by match date. Only found pages are
// stored: a page may be written after the match is first scraped.
type wikiCache struct {
	mu       sync.Mutex
	pages    map[string]string    // YYYY-MM-DD → page name
	cachedAt map[string]time.Time // key → cache time
	ttl      time.Duration
	now      func() time.Time
}

func newWikiCache(ttl time.Duration) *wikiCache {
	if ttl <= 0 {
		ttl = DefaultWikiCacheTTL
	}
	return &wikiCache{
		pages:    make(map[string]string),
		cachedAt: make(map[string]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// get returns the page cached for the day of t if it has not expired
func (c *wikiCache) get(t time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := dayKey(t)
	page, exists := c.pages[key]
	if !exists {
		return "", false
	}

	cachedTime, hasTime := c.cachedAt[key]
	if !hasTime || c.now().Sub(cachedTime) > c.ttl {
		delete(c.pages, key)
		delete(c.cachedAt, key)
		return "", false
	}

	return page, true
}

func (c *wikiCache) set(t time.Time, page string) {
	if page == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := dayKey(t)
	c.pages[key] = page
	c.cachedAt[key] = c.now()
}

// cleanExpired removes expired entries and returns how many were removed
func (c *wikiCache) cleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, cachedTime := range c.cachedAt {
		if now.Sub(cachedTime) > c.ttl {
			delete(c.pages, key)
			delete(c.cachedAt, key)
			removed++
		}
	}

	return removed
}

func (c *wikiCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
