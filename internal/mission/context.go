package mission

import (
	"log/slog"
	"sync"

	"github.com/cyborstrike/combatcore/pkg/core"
)

// Context holds the mission attempt currently being recorded. The
// coordinator goroutine writes it; loggers and the monitor read it.
type Context struct {
	mu      sync.RWMutex
	mission core.Mission
	loaded  bool
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{
		mission: core.Mission{MapName: "No mission loaded"},
	}
}

// GetMission returns the current mission and whether one is loaded.
func (mc *Context) GetMission() (core.Mission, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.mission, mc.loaded
}

// SetMission replaces the current mission.
func (mc *Context) SetMission(m core.Mission) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.mission = m
	mc.loaded = true
}

// SetID records the storage id assigned to the current mission.
func (mc *Context) SetID(id uint) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.mission.ID = id
}

// Clear marks the mission as ended.
func (mc *Context) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.mission = core.Mission{MapName: "No mission loaded"}
	mc.loaded = false
}

// Attrs returns the log attributes of the current mission, or nil when no
// mission is loaded.
func (mc *Context) Attrs() []slog.Attr {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if !mc.loaded {
		return nil
	}
	return []slog.Attr{
		slog.String("session", mc.mission.SessionID),
		slog.Int("mission", mc.mission.Index+1),
		slog.String("map", mc.mission.MapName),
		slog.Int("attempt", mc.mission.Attempt),
	}
}
