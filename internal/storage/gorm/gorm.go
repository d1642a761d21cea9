// Package gormstorage implements the storage.Backend interface on top of GORM
// with internal queues and a background DB writer goroutine. The postgres and
// sqlite packages wrap it with their connection setup.
package gormstorage

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyborstrike/combatcore/internal/cache"
	"github.com/cyborstrike/combatcore/internal/database"
	"github.com/cyborstrike/combatcore/internal/model"
	"github.com/cyborstrike/combatcore/internal/model/convert"
	"github.com/cyborstrike/combatcore/internal/queue"
	"github.com/cyborstrike/combatcore/internal/storage"
	"github.com/cyborstrike/combatcore/internal/weapon"
	"github.com/cyborstrike/combatcore/pkg/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultFlushInterval is how often queued rows are written.
const DefaultFlushInterval = 2 * time.Second

// fallbackReach is the shot trace length for weapons outside the preset table.
const fallbackReach = 100.0

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	EntityCache   *cache.EntityCache
	KillTally     *cache.KillTally
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Entities     *queue.Queue[model.Entity]
	EntityStates *queue.Queue[model.EntityState]
	FiredEvents  *queue.Queue[model.FiredEvent]
	HitEvents    *queue.Queue[model.HitEvent]
	KillEvents   *queue.Queue[model.KillEvent]
	StateChanges *queue.Queue[model.StateChange]
}

func newQueues() *queues {
	return &queues{
		Entities:     queue.New[model.Entity](),
		EntityStates: queue.New[model.EntityState](),
		FiredEvents:  queue.New[model.FiredEvent](),
		HitEvents:    queue.New[model.HitEvent](),
		KillEvents:   queue.New[model.KillEvent](),
		StateChanges: queue.New[model.StateChange](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
// Rows are stamped with their mission ID when queued, so a writer cycle that
// straddles a mission change still files them correctly.
type Backend struct {
	deps   Dependencies
	queues *queues

	mu      sync.Mutex
	current *model.Mission
	anchor  core.GeoAnchor

	lastWrite atomic.Int64 // nanoseconds

	writeMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.EntityCache == nil {
		deps.EntityCache = cache.NewEntityCache()
	}
	if deps.KillTally == nil {
		deps.KillTally = cache.NewKillTally()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

// Init runs schema migration and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend: no database")
	}
	if err := database.Setup(b.deps.DB, b.deps.Logger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the writer goroutine and flushes what is left.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() {
		if b.stopChan != nil {
			close(b.stopChan)
			<-b.done
		}
	})
	if b.deps.DB != nil {
		b.Flush()
	}
	return nil
}

// DB exposes the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// StartMission inserts the mission row synchronously so the DB-generated ID
// can be handed back.
func (b *Backend) StartMission(m *core.Mission) error {
	row, err := convert.CoreToMission(*m)
	if err != nil {
		return err
	}
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new mission: %w", err)
	}
	m.ID = row.ID

	b.mu.Lock()
	b.current = &row
	b.anchor = m.Anchor
	b.mu.Unlock()

	b.deps.EntityCache.Reset()
	b.deps.KillTally.Reset()

	b.deps.Logger.Debug("Mission row created", "missionId", row.ID, "map", m.MapName, "attempt", m.Attempt)
	return nil
}

// EndMission flushes the queues and writes the result onto the mission row.
func (b *Backend) EndMission(r *core.MatchResult) error {
	b.mu.Lock()
	row := b.current
	b.current = nil
	b.mu.Unlock()
	if row == nil {
		return storage.ErrNoMission
	}

	b.Flush()

	convert.ApplyResult(row, *r, b.deps.KillTally.Snapshot())
	if err := b.deps.DB.Omit(clause.Associations).Save(row).Error; err != nil {
		return fmt.Errorf("failed to update mission %d: %w", row.ID, err)
	}
	return nil
}

// mission returns the id and anchor events should be filed under.
func (b *Backend) mission() (uint, core.GeoAnchor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return 0, core.GeoAnchor{}, storage.ErrNoMission
	}
	return b.current.ID, b.anchor, nil
}

// AddEntity caches the entity and queues its row.
func (b *Backend) AddEntity(e *core.Entity) error {
	id, anchor, err := b.mission()
	if err != nil {
		return err
	}
	row, err := convert.CoreToEntity(anchor, *e)
	if err != nil {
		return fmt.Errorf("failed to convert entity %d: %w", e.ID, err)
	}
	b.deps.EntityCache.AddEntity(*e)
	row.MissionID = id
	b.queues.Entities.Push(row)
	return nil
}

// RecordFrame converts and queues one state row per entity.
func (b *Backend) RecordFrame(f *core.FrameSnapshot) error {
	id, anchor, err := b.mission()
	if err != nil {
		return err
	}
	rows, err := convert.CoreToEntityStates(anchor, *f)
	if err != nil {
		return fmt.Errorf("failed to convert tick %d: %w", f.Tick, err)
	}
	for i := range rows {
		rows[i].MissionID = id
	}
	b.queues.EntityStates.Push(rows...)
	return nil
}

// RecordFiredEvent converts and queues a fired event.
func (b *Backend) RecordFiredEvent(e *core.FiredEvent) error {
	id, anchor, err := b.mission()
	if err != nil {
		return err
	}
	row, err := convert.CoreToFiredEvent(anchor, *e, weapon.Reach(e.Weapon, fallbackReach))
	if err != nil {
		return fmt.Errorf("failed to convert fired event: %w", err)
	}
	row.MissionID = id
	b.queues.FiredEvents.Push(row)
	return nil
}

// RecordHitEvent converts and queues a hit event.
func (b *Backend) RecordHitEvent(e *core.HitEvent) error {
	id, anchor, err := b.mission()
	if err != nil {
		return err
	}
	row, err := convert.CoreToHitEvent(anchor, *e)
	if err != nil {
		return fmt.Errorf("failed to convert hit event: %w", err)
	}
	row.MissionID = id
	b.queues.HitEvents.Push(row)
	return nil
}

// RecordKillEvent resolves both names from the cache, tallies the kill and
// queues the row.
func (b *Backend) RecordKillEvent(e *core.KillEvent) error {
	id, anchor, err := b.mission()
	if err != nil {
		return err
	}
	killer := b.deps.EntityCache.Name(e.KillerID)
	victim := b.deps.EntityCache.Name(e.VictimID)

	row, err := convert.CoreToKillEvent(anchor, *e, killer, victim)
	if err != nil {
		return fmt.Errorf("failed to convert kill event: %w", err)
	}
	b.deps.KillTally.Inc(killer)
	row.MissionID = id
	b.queues.KillEvents.Push(row)
	return nil
}

// RecordStateChange converts and queues a behavior transition.
func (b *Backend) RecordStateChange(e *core.StateChangeEvent) error {
	id, anchor, err := b.mission()
	if err != nil {
		return err
	}
	row, err := convert.CoreToStateChange(anchor, *e)
	if err != nil {
		return fmt.Errorf("failed to convert state change: %w", err)
	}
	row.MissionID = id
	b.queues.StateChanges.Push(row)
	return nil
}

// Results reads back every finished attempt of a session, oldest first.
func (b *Backend) Results(sessionID string) ([]core.MatchResult, error) {
	var rows []model.Mission
	err := b.deps.DB.
		Where("session_id = ? AND end_time IS NOT NULL", sessionID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query missions: %w", err)
	}

	results := make([]core.MatchResult, 0, len(rows))
	for _, row := range rows {
		if r, ok := convert.MissionToResult(row); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// WriteQueueLengths reports how many rows are waiting per queue.
func (b *Backend) WriteQueueLengths() model.WriteQueueLengths {
	return model.WriteQueueLengths{
		Entities:     uint16(b.queues.Entities.Len()),
		EntityStates: uint16(b.queues.EntityStates.Len()),
		FiredEvents:  uint16(b.queues.FiredEvents.Len()),
		HitEvents:    uint16(b.queues.HitEvents.Len()),
		KillEvents:   uint16(b.queues.KillEvents.Len()),
		StateChanges: uint16(b.queues.StateChanges.Len()),
	}
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
func (b *Backend) GetLastDBWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// writeQueue writes all items from a queue to the database in a transaction.
// On failure the batch goes back to the head of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log *slog.Logger) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.GetAndEmpty()
	if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
		log.Error("Error creating rows", "table", name, "count", len(items), "error", err)
		tx.Rollback()
		q.PushFront(items...)
		return
	}
	if err := tx.Commit().Error; err != nil {
		log.Error("Error committing rows", "table", name, "count", len(items), "error", err)
		q.PushFront(items...)
	}
}

// Flush drains every queue into the DB. Entities go first so state and event
// rows never reference a missing entity.
func (b *Backend) Flush() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	start := time.Now()
	db, log := b.deps.DB, b.deps.Logger

	writeQueue(db, b.queues.Entities, "entities", log)
	writeQueue(db, b.queues.EntityStates, "entity states", log)
	writeQueue(db, b.queues.FiredEvents, "fired events", log)
	writeQueue(db, b.queues.HitEvents, "hit events", log)
	writeQueue(db, b.queues.KillEvents, "kill events", log)
	writeQueue(db, b.queues.StateChanges, "state changes", log)

	b.lastWrite.Store(int64(time.Since(start)))
}

// writerLoop periodically drains queues into the DB until Close.
func (b *Backend) writerLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}
