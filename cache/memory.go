package cache

import (
	"context"
	"sort"
	"sync"
)

// InMemoryCache is a thread-safe in-memory cache. Entries never expire.
type InMemoryCache struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]Entry)}
}

// Get retrieves a translation from the cache.
func (c *InMemoryCache) Get(_ context.Context, text, lang string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[Key(text, lang)]
	if !ok {
		return "", false, nil
	}
	return e.Value, true, nil
}

// Set stores a translation in the cache.
func (c *InMemoryCache) Set(_ context.Context, text, lang, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(text, lang)] = Entry{Text: text, Lang: lang, Value: value}
	return nil
}

// Len returns the number of entries in the cache.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Entries returns all entries sorted by language, then source text.
func (c *InMemoryCache) Entries(_ context.Context) ([]Entry, error) {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Lang != out[j].Lang {
			return out[i].Lang < out[j].Lang
		}
		return out[i].Text < out[j].Text
	})
	return out, nil
}

var (
	_ TranslationCache = (*InMemoryCache)(nil)
	_ Enumerable       = (*InMemoryCache)(nil)
)
