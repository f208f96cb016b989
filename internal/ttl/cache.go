// Package ttl provides a generic expiring key-value cache with batched,
// de-duplicated refresh. The sync engine uses it to bound background
// enrichment calls.
package ttl

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// Record is a cached value with its refresh timestamp.
type Record[V any] struct {
	Value     V         `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FetchFunc loads a fresh value for one id.
type FetchFunc[V any] func(ctx context.Context, id string) (V, error)

// Cache maps string ids to expiring records. A record older than the
// TTL is treated as absent for reads but stays cached, so an id that
// keeps failing is not hammered before the TTL lapses again.
type Cache[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	records  map[string]Record[V]
	inflight map[string]struct{}
}

// New creates an empty cache with the given TTL.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:      ttl,
		records:  make(map[string]Record[V]),
		inflight: make(map[string]struct{}),
	}
}

// Read returns the cached value for id. Never triggers network
// activity. Missing and expired records both read as absent.
func (c *Cache[V]) Read(id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[id]
	if !ok || time.Since(rec.UpdatedAt) > c.ttl {
		var zero V
		return zero, false
	}
	return rec.Value, true
}

// NeedsRefresh reports whether id has no record or an expired one.
func (c *Cache[V]) NeedsRefresh(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[id]
	return !ok || time.Since(rec.UpdatedAt) > c.ttl
}

// Store records a value for id stamped with the current time.
func (c *Cache[V]) Store(id string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[id] = Record[V]{Value: v, UpdatedAt: time.Now()}
}

// Snapshot returns a copy of all records, including expired ones, for
// persistence.
func (c *Cache[V]) Snapshot() map[string]Record[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.records)
}

// Restore replaces the cache contents, typically from a persisted
// snapshot at startup.
func (c *Cache[V]) Restore(records map[string]Record[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = maps.Clone(records)
	if c.records == nil {
		c.records = make(map[string]Record[V])
	}
}

// Preload refreshes the given ids in fixed-size batches with bounded
// concurrent fetches per batch. Ids already fresh or already being
// fetched are skipped, so at most one fetch per id is ever outstanding.
// A failed fetch stores the zero value stamped now, deliberately
// trading staleness for bounded API cost.
func (c *Cache[V]) Preload(ctx context.Context, ids []string, batchSize int, fetch FetchFunc[V]) {
	c.mu.Lock()
	var pending []string
	for _, id := range ids {
		if _, busy := c.inflight[id]; busy {
			continue
		}
		rec, ok := c.records[id]
		if ok && time.Since(rec.UpdatedAt) <= c.ttl {
			continue
		}
		c.inflight[id] = struct{}{}
		pending = append(pending, id)
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		for _, id := range pending {
			delete(c.inflight, id)
		}
		c.mu.Unlock()
	}()

	if batchSize < 1 {
		batchSize = 1
	}
	for batch := range slices.Chunk(pending, batchSize) {
		if ctx.Err() != nil {
			return
		}

		var wg sync.WaitGroup
		for _, id := range batch {
			wg.Go(func() {
				v, err := fetch(ctx, id)
				if err != nil {
					var zero V
					c.Store(id, zero)
					return
				}
				c.Store(id, v)
			})
		}
		wg.Wait()
	}
}
