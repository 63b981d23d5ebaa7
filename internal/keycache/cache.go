// Package keycache keeps keyed cipher blocks so repeated operations under one
// key skip the key schedule.
package keycache

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lightninglabs/neutrino/cache"
	"github.com/lightninglabs/neutrino/cache/lru"

	"cipherlab/internal/crypto"
)

// DefaultCapacity is the number of schedules kept when no capacity is given.
const DefaultCapacity = 256

// cacheKey identifies one schedule. The engine name distinguishes
// reduced-round AES engines from the full cipher.
type cacheKey struct {
	engine string
	key    string
}

type entry struct {
	block crypto.Block
}

// Size implements cache.Value. Every schedule counts as one element.
func (e *entry) Size() (uint64, error) {
	return 1, nil
}

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Cache is a concurrency-safe LRU of keyed blocks. A different key is always
// a different entry, so a key change can never reuse a stale schedule.
type Cache struct {
	mu      sync.Mutex
	entries *lru.Cache[cacheKey, *entry]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache holding up to capacity schedules.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries: lru.NewCache[cacheKey, *entry](uint64(capacity)),
	}
}

func keyFor(e crypto.Engine, key []byte) cacheKey {
	return cacheKey{engine: e.Params().Name, key: string(key)}
}

// Block returns the keyed block for (e, key), running the key schedule on a
// miss.
func (c *Cache) Block(e crypto.Engine, key []byte) (crypto.Block, error) {
	k := keyFor(e, key)

	// Fast path: no lock beyond the LRU's own.
	if hit, err := c.entries.Get(k); err == nil {
		c.hits.Add(1)
		return hit.block, nil
	}

	// Slow path: build outside the lock.
	b, err := e.NewCipher(key)
	if err != nil {
		return nil, err
	}

	// Double-check so concurrent misses agree on one block.
	c.mu.Lock()
	defer c.mu.Unlock()

	hit, err := c.entries.Get(k)
	switch {
	case err == nil:
		c.hits.Add(1)
		return hit.block, nil

	case !errors.Is(err, cache.ErrElementNotFound):
		return nil, fmt.Errorf("keycache: get %s: %w", k.engine, err)
	}

	c.misses.Add(1)
	if _, err := c.entries.Put(k, &entry{block: b}); err != nil {
		return nil, fmt.Errorf("keycache: put %s: %w", k.engine, err)
	}
	log.Debugf("Cached %s schedule (%d entries)", k.engine, c.entries.Len())

	return b, nil
}

// Invalidate drops the schedule for (e, key).
func (c *Cache) Invalidate(e crypto.Engine, key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Delete(keyFor(e, key))
}

// Purge drops every schedule. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []cacheKey
	c.entries.Range(func(k cacheKey, _ *entry) bool {
		keys = append(keys, k)
		return true
	})
	for _, k := range keys {
		c.entries.Delete(k)
	}
	log.Debugf("Purged %d schedules", len(keys))
}

// Len returns the number of cached schedules.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}
