package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyborstrike/combatcore/pkg/core"
)

func TestEntityCache_NewEntityCache(t *testing.T) {
	cache := NewEntityCache()

	require.NotNil(t, cache)
	assert.NotNil(t, cache.Entities)
	assert.Equal(t, 0, cache.Len())
}

func TestEntityCache_AddAndGetEntity(t *testing.T) {
	cache := NewEntityCache()

	cache.AddEntity(core.Entity{ID: 42, Name: "Cybor-42", Team: core.TeamTerrorist})

	got, ok := cache.GetEntity(42)
	require.True(t, ok, "expected to find entity with ID 42")
	assert.Equal(t, core.EntityID(42), got.ID)
	assert.Equal(t, "Cybor-42", got.Name)
}

func TestEntityCache_GetEntity_NotFound(t *testing.T) {
	cache := NewEntityCache()

	_, ok := cache.GetEntity(999)
	assert.False(t, ok, "expected not to find entity with ID 999")
}

func TestEntityCache_Name(t *testing.T) {
	cache := NewEntityCache()
	cache.AddEntity(core.Entity{ID: core.PlayerID, Name: "Player"})
	cache.AddEntity(core.Entity{ID: 3})

	assert.Equal(t, "Player", cache.Name(core.PlayerID))
	assert.Equal(t, "entity-3", cache.Name(3))
	assert.Equal(t, "entity-77", cache.Name(77))
}

func TestEntityCache_Reset(t *testing.T) {
	cache := NewEntityCache()

	cache.AddEntity(core.Entity{ID: 1, Name: "Bot 1"})
	cache.AddEntity(core.Entity{ID: 2, Name: "Bot 2"})
	assert.Equal(t, 2, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())

	// Verify we can still add data after reset
	cache.AddEntity(core.Entity{ID: 3, Name: "Bot 3"})
	_, ok := cache.GetEntity(3)
	assert.True(t, ok, "expected to find entity added after reset")
}

func TestEntityCache_LockUnlock(t *testing.T) {
	cache := NewEntityCache()

	cache.Lock()
	cache.Entities[1] = core.Entity{ID: 1, Name: "Direct Add"}
	cache.Unlock()

	got, ok := cache.GetEntity(1)
	require.True(t, ok, "expected to find entity added while holding lock")
	assert.Equal(t, "Direct Add", got.Name)
}

func TestEntityCache_Concurrent(t *testing.T) {
	cache := NewEntityCache()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(id core.EntityID) {
			defer wg.Done()
			cache.AddEntity(core.Entity{ID: id, Name: "Bot"})
		}(core.EntityID(i))
		go func(id core.EntityID) {
			defer wg.Done()
			cache.Name(id)
		}(core.EntityID(i))
	}
	wg.Wait()

	assert.Equal(t, 100, cache.Len())
}

// SafeCounter tests

func TestSafeCounter_InitialValue(t *testing.T) {
	c := &SafeCounter{}
	assert.Equal(t, int(0), c.Value())
}

func TestSafeCounter_Set(t *testing.T) {
	c := &SafeCounter{}

	c.Set(42)
	assert.Equal(t, int(42), c.Value())

	c.Set(100)
	assert.Equal(t, int(100), c.Value())

	c.Set(0)
	assert.Equal(t, int(0), c.Value())
}

func TestSafeCounter_Inc(t *testing.T) {
	c := &SafeCounter{}

	c.Inc()
	assert.Equal(t, int(1), c.Value())

	c.Inc()
	c.Inc()
	assert.Equal(t, int(3), c.Value())
}

func TestSafeCounter_Concurrent(t *testing.T) {
	c := &SafeCounter{}
	var wg sync.WaitGroup

	// Concurrent increments
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, int(1000), c.Value())
}
