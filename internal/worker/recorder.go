package worker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/cyborstrike/combatcore/internal/dispatcher"
	"github.com/cyborstrike/combatcore/internal/encounter"
	"github.com/cyborstrike/combatcore/internal/storage"
	"github.com/cyborstrike/combatcore/pkg/core"
)

var _ encounter.Recorder = (*Recorder)(nil)

// Recorder turns coordinator telemetry into dispatcher events. Dispatch
// errors are logged and dropped so a failing backend never stalls the tick.
type Recorder struct {
	d   *dispatcher.Dispatcher
	log *slog.Logger
}

// NewRecorder creates a Recorder dispatching through d.
func NewRecorder(d *dispatcher.Dispatcher, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{d: d, log: log}
}

func (r *Recorder) send(cmd string, at time.Time, p any) {
	_, err := r.d.Dispatch(dispatcher.Event{Command: cmd, Payload: p, Timestamp: at})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNoMission):
		r.log.Debug("Event outside mission dropped", "command", cmd)
	default:
		r.log.Warn("Failed to record event", "command", cmd, "error", err)
	}
}

func (r *Recorder) MissionStarted(m core.Mission) { r.send(CmdMissionStart, m.StartTime, &m) }

func (r *Recorder) EntitySpawned(e core.Entity) { r.send(CmdSpawn, e.JoinTime, &e) }

func (r *Recorder) ShotFired(e core.FiredEvent) { r.send(CmdFired, e.Time, &e) }

func (r *Recorder) EntityHit(e core.HitEvent) { r.send(CmdHit, e.Time, &e) }

func (r *Recorder) EntityKilled(e core.KillEvent) { r.send(CmdKill, e.Time, &e) }

func (r *Recorder) StateChanged(e core.StateChangeEvent) { r.send(CmdState, e.Time, &e) }

func (r *Recorder) FrameCaptured(f core.FrameSnapshot) { r.send(CmdSnapshot, f.Time, &f) }

func (r *Recorder) MissionEnded(res core.MatchResult) { r.send(CmdMissionEnd, res.EndTime, &res) }
