package encounter

import "github.com/cyborstrike/combatcore/pkg/core"

// Recorder receives combat telemetry as it happens. Implementations must not
// block; the coordinator calls them from inside the tick.
type Recorder interface {
	MissionStarted(m core.Mission)
	EntitySpawned(e core.Entity)
	ShotFired(e core.FiredEvent)
	EntityHit(e core.HitEvent)
	EntityKilled(e core.KillEvent)
	StateChanged(e core.StateChangeEvent)
	FrameCaptured(f core.FrameSnapshot)
	MissionEnded(r core.MatchResult)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) MissionStarted(core.Mission) {}
func (NopRecorder) EntitySpawned(core.Entity) {}
func (NopRecorder) ShotFired(core.FiredEvent) {}
func (NopRecorder) EntityHit(core.HitEvent) {}
func (NopRecorder) EntityKilled(core.KillEvent) {}
func (NopRecorder) StateChanged(core.StateChangeEvent) {}
func (NopRecorder) FrameCaptured(core.FrameSnapshot) {}
func (NopRecorder) MissionEnded(core.MatchResult) {}
