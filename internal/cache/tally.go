package cache

import (
	"maps"
	"sync"
)

// KillTally counts kills per entity name for the current mission
type KillTally struct {
	mu    sync.RWMutex
	kills map[string]int
}

// NewKillTally creates a new KillTally
func NewKillTally() *KillTally {
	return &KillTally{
		kills: make(map[string]int),
	}
}

// Get returns the kill count for name
func (c *KillTally) Get(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kills[name]
}

// Inc adds one kill for name
func (c *KillTally) Inc(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kills[name]++
}

// Snapshot returns a copy of all counts
func (c *KillTally) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.kills)
}

// Reset clears all counts
func (c *KillTally) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kills = make(map[string]int)
}
