// Package cache provides a small in-memory TTL cache used by the store to
// keep hot rows out of the database on the interactive path.
package cache

import (
	"sync"
	"time"
)

// Config holds the cache configuration.
type Config struct {
	// DefaultTTL is the lifetime for entries set without an explicit TTL.
	DefaultTTL time.Duration
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
	// MaxItems bounds the cache size; inserts beyond it evict an arbitrary entry.
	MaxItems int
	// OnEviction, if set, is called for every evicted or expired entry.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a thread-safe in-memory TTL cache.
type Cache struct {
	config Config

	mu    sync.RWMutex
	items map[string]item

	stop chan struct{}
	once sync.Once
}

// New creates a cache and starts its cleanup goroutine.
func New(config Config) *Cache {
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 10 * time.Minute
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.MaxItems == 0 {
		config.MaxItems = 1000
	}

	c := &Cache{
		config: config,
		items:  make(map[string]item),
		stop:   make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(it.expiresAt) {
		return nil, false
	}
	return it.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.config.MaxItems {
		for k, it := range c.items {
			delete(c.items, k)
			c.evicted(k, it.value)
			break
		}
	}
	c.items[key] = item{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	it, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	if ok {
		c.evicted(key, it.value)
	}
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	old := c.items
	c.items = make(map[string]item)
	c.mu.Unlock()
	for k, it := range old {
		c.evicted(k, it.value)
	}
}

// Len returns the number of entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) evicted(key string, value any) {
	if c.config.OnEviction != nil {
		c.config.OnEviction(key, value)
	}
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	var expired []string
	for k, it := range c.items {
		if now.After(it.expiresAt) {
			expired = append(expired, k)
		}
	}
	values := make([]any, 0, len(expired))
	for _, k := range expired {
		values = append(values, c.items[k].value)
		delete(c.items, k)
	}
	c.mu.Unlock()

	for i, k := range expired {
		c.evicted(k, values[i])
	}
}
