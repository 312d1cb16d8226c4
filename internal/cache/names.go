package cache

import "sync"

// NameCache maps script-level wall names to wall IDs.
type NameCache struct {
	mu    sync.RWMutex
	names map[string]uint
}

func NewNameCache() *NameCache {
	return &NameCache{
		names: make(map[string]uint),
	}
}

// Get retrieves a wall ID by name
func (c *NameCache) Get(name string) (uint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.names[name]
	return id, ok
}

// Set stores a wall ID by name
func (c *NameCache) Set(name string, id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[name] = id
}

func (c *NameCache) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.names, name)
}

// Reset clears all names from the cache
func (c *NameCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = make(map[string]uint)
}
