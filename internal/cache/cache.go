package cache

import (
	"fmt"
	"sync"

	"github.com/cyborstrike/combatcore/pkg/core"
)

// EntityCache caches spawned entities so event writers can resolve names and
// teams without a db read. It is reset at every mission start.
type EntityCache struct {
	m        sync.Mutex
	Entities map[core.EntityID]core.Entity
}

func NewEntityCache() *EntityCache {
	return &EntityCache{
		m:        sync.Mutex{},
		Entities: make(map[core.EntityID]core.Entity),
	}
}

func (c *EntityCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Entities = make(map[core.EntityID]core.Entity)
}

func (c *EntityCache) Lock() {
	c.m.Lock()
}

func (c *EntityCache) Unlock() {
	c.m.Unlock()
}

func (c *EntityCache) GetEntity(id core.EntityID) (core.Entity, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if e, ok := c.Entities[id]; ok {
		return e, true
	}
	return core.Entity{}, false
}

func (c *EntityCache) AddEntity(e core.Entity) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Entities[e.ID] = e
}

// Name returns the entity's display name, or a placeholder for ids that were
// never registered.
func (c *EntityCache) Name(id core.EntityID) string {
	if e, ok := c.GetEntity(id); ok && e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("entity-%d", id)
}

func (c *EntityCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Entities)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
