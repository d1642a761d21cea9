// internal/storage/memory/memory.go
package memory

import (
	"sync"

	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/cyborstrike/combatcore/internal/storage"
	v1 "github.com/cyborstrike/combatcore/internal/storage/memory/export/v1"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// Backend keeps one mission attempt in memory and exports it as an
// after-action report when the attempt ends.
type Backend struct {
	cfg     config.MemoryConfig
	mission *core.Mission

	entities map[core.EntityID]*v1.EntityRecord

	hitEvents    []core.HitEvent
	killEvents   []core.KillEvent
	stateChanges []core.StateChangeEvent

	missionCounter uint
	lastExportPath string
	lastExportMeta core.UploadMetadata
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		entities: make(map[core.EntityID]*v1.EntityRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartMission begins recording a new attempt and assigns its ID
func (b *Backend) StartMission(mission *core.Mission) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.missionCounter++
	mission.ID = b.missionCounter
	m := *mission
	b.mission = &m

	b.entities = make(map[core.EntityID]*v1.EntityRecord)
	b.hitEvents = nil
	b.killEvents = nil
	b.stateChanges = nil

	return nil
}

// EndMission finalizes and exports the attempt
func (b *Backend) EndMission(result *core.MatchResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return storage.ErrNoMission
	}
	err := b.exportJSON(result)
	b.mission = nil
	return err
}

// GetExportedFilePath returns the path of the last report written
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last report written
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMeta
}

// AddEntity registers an entity for the current attempt
func (b *Backend) AddEntity(e *core.Entity) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return storage.ErrNoMission
	}
	b.entities[e.ID] = &v1.EntityRecord{
		Entity: *e,
		States: make([]v1.StateRecord, 0),
	}
	return nil
}

// GetEntity looks up a registered entity
func (b *Backend) GetEntity(id core.EntityID) (*core.Entity, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if record, ok := b.entities[id]; ok {
		return &record.Entity, true
	}
	return nil, false
}

// RecordFrame appends every snapshot in the frame to its entity
func (b *Backend) RecordFrame(f *core.FrameSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return storage.ErrNoMission
	}
	for _, s := range f.Entities {
		record, ok := b.entities[s.ID]
		if !ok {
			continue // silently ignore if entity not registered
		}
		record.States = append(record.States, v1.StateRecord{Tick: f.Tick, State: s})
	}
	return nil
}

// RecordFiredEvent records a fired event
func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mission == nil {
		return storage.ErrNoMission
	}
	if record, ok := b.entities[e.ShooterID]; ok {
		record.FiredEvents = append(record.FiredEvents, *e)
	}
	return nil
}

// RecordHitEvent records a hit event
func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mission == nil {
		return storage.ErrNoMission
	}
	b.hitEvents = append(b.hitEvents, *e)
	return nil
}

// RecordKillEvent records a kill event
func (b *Backend) RecordKillEvent(e *core.KillEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mission == nil {
		return storage.ErrNoMission
	}
	b.killEvents = append(b.killEvents, *e)
	return nil
}

// RecordStateChange records a bot behavior transition
func (b *Backend) RecordStateChange(e *core.StateChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mission == nil {
		return storage.ErrNoMission
	}
	b.stateChanges = append(b.stateChanges, *e)
	return nil
}
