package calendar

import (
	"sync"

	"github.com/shvilbus/shvilbus/pkg/htdf"
)

// Cache holds resolved deadlines per (date, region) key for one planning
// run. Population is at-most-once per key: the first writer wins and racing
// computers of the same key produce identical values anyway.
type Cache struct {
	mu      sync.Mutex
	entries map[string]htdf.Deadline
}

func NewCache() *Cache {
	return &Cache{
		entries: map[string]htdf.Deadline{},
	}
}

func (c *Cache) fetch(key string) (htdf.Deadline, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, exists := c.entries[key]
	return deadline, exists
}

func (c *Cache) store(key string, deadline htdf.Deadline) htdf.Deadline {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.entries[key]; exists {
		return existing
	}

	c.entries[key] = deadline
	return deadline
}
