package descarteslabs

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// ResponseCache memoizes successful endpoint results by operation
// fingerprint. Capacity is fixed at construction; entries expire after a
// fixed TTL, expired entries are purged on any access, and the least recently
// used live entry is evicted when the cache is full. Failed computations are
// never stored. Safe for concurrent use.
type ResponseCache struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

type cacheEntry struct {
	key       string
	value     json.RawMessage
	expiresAt time.Time
}

// NewResponseCache creates a cache holding at most maxSize entries for ttl
// each.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	return newResponseCache(maxSize, ttl, time.Now)
}

func newResponseCache(maxSize int, ttl time.Duration, now func() time.Time) *ResponseCache {
	if now == nil {
		now = time.Now
	}
	return &ResponseCache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// GetOrCompute returns the live cached value for key, or runs compute and
// stores its result. Concurrent callers with the same key may each run
// compute; the store itself is never corrupted. Lookups never fail: a miss
// always falls through to compute, whose error propagates uncached.
func (c *ResponseCache) GetOrCompute(key string, compute func() (json.RawMessage, error)) (json.RawMessage, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(key, value)
	return value, nil
}

// Get returns the live value for key, marking it most recently used.
func (c *ResponseCache) Get(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpiredLocked()

	element, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*cacheEntry).value, true
}

// Set stores value under key, evicting the least recently used live entry
// when the cache is at capacity.
func (c *ResponseCache) Set(key string, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purgeExpiredLocked()

	expiresAt := c.now().Add(c.ttl)
	if element, ok := c.entries[key]; ok {
		entry := element.Value.(*cacheEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		c.order.MoveToFront(element)
		return
	}

	if c.maxSize > 0 && c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.removeLocked(oldest)
		}
	}

	element := c.order.PushFront(&cacheEntry{key: key, value: value, expiresAt: expiresAt})
	c.entries[key] = element
}

// Delete removes the entry for key, if any.
func (c *ResponseCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		c.removeLocked(element)
	}
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the number of stored entries, expired included until the next
// access purges them.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *ResponseCache) purgeExpiredLocked() {
	now := c.now()
	for element := c.order.Back(); element != nil; {
		prev := element.Prev()
		if now.After(element.Value.(*cacheEntry).expiresAt) {
			c.removeLocked(element)
		}
		element = prev
	}
}

func (c *ResponseCache) removeLocked(element *list.Element) {
	c.order.Remove(element)
	delete(c.entries, element.Value.(*cacheEntry).key)
}
