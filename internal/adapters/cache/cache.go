// Package cache provides a bounded in-memory TTL cache for merged fetch
// results, keyed by the flattened search string. Repeated ingest of the
// same title should not fan out to the providers again within the TTL.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultTTL        = 15 * time.Minute
	defaultMaxEntries = 1024
)

type entry struct {
	record  model.MetadataRecord
	expires time.Time
}

// Cache is a concurrency-safe TTL cache. The zero value is not usable;
// construct with New.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	order      []string // insertion order for eviction
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        defaultTTL,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]entry, c.maxEntries)
	return c
}

// Get returns the cached record for key if present and not expired.
func (c *Cache) Get(_ context.Context, key string) (model.MetadataRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		metrics.RecordCacheMiss()
		return model.MetadataRecord{}, false
	}
	metrics.RecordCacheHit()
	return e.record.Clone(), true
}

// Put stores rec under key, evicting expired and oldest entries as needed.
func (c *Cache) Put(_ context.Context, key string, rec model.MetadataRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry{record: rec.Clone(), expires: c.now().Add(c.ttl)}

	if len(c.entries) <= c.maxEntries {
		return
	}

	// Drop expired entries first, then the oldest insertions.
	now := c.now()
	keep := c.order[:0]
	for _, k := range c.order {
		e, ok := c.entries[k]
		if !ok {
			continue
		}
		if now.After(e.expires) {
			delete(c.entries, k)
			continue
		}
		keep = append(keep, k)
	}
	c.order = keep

	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// Len returns the number of live entries, counting expired ones that have
// not been evicted yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
