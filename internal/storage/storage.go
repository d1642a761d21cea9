// internal/storage/storage.go
package storage

import (
	"errors"
	"time"

	"github.com/cyborstrike/combatcore/internal/model"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// ErrNoMission is returned when an event arrives before StartMission.
var ErrNoMission = errors.New("no mission in progress")

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Mission management (StartMission assigns the ID to the passed pointer)
	StartMission(mission *core.Mission) error
	EndMission(result *core.MatchResult) error

	// Entity registration
	AddEntity(e *core.Entity) error

	// State recording
	RecordFrame(f *core.FrameSnapshot) error

	// Event recording
	RecordFiredEvent(e *core.FiredEvent) error
	RecordHitEvent(e *core.HitEvent) error
	RecordKillEvent(e *core.KillEvent) error
	RecordStateChange(e *core.StateChangeEvent) error
}

// Exporter is an optional interface for storage backends that produce an
// after-action report file per mission attempt.
type Exporter interface {
	GetExportedFilePath() string
}

// Uploadable is an optional interface for exporters whose reports can be
// sent to a report server.
type Uploadable interface {
	Exporter
	GetExportMetadata() core.UploadMetadata
}

// Monitorable is an optional interface for backends with a background write
// pipeline worth reporting on.
type Monitorable interface {
	WriteQueueLengths() model.WriteQueueLengths
	GetLastDBWriteDuration() time.Duration
}

// History is an optional interface for backends that can read finished
// attempts back.
type History interface {
	Results(sessionID string) ([]core.MatchResult, error)
}
