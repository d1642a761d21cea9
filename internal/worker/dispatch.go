package worker

import (
	"fmt"

	"github.com/cyborstrike/combatcore/internal/dispatcher"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// Telemetry commands understood by the manager.
const (
	CmdMissionStart = ":MISSION:START:"
	CmdSpawn        = ":SPAWN:"
	CmdFired        = ":FIRED:"
	CmdHit          = ":HIT:"
	CmdKill         = ":KILL:"
	CmdState        = ":STATE:"
	CmdSnapshot     = ":SNAPSHOT:"
	CmdMissionEnd   = ":MISSION:END:"
)

// RegisterHandlers registers all event handlers with the dispatcher.
// Every handler runs inline in the dispatching goroutine: backends queue
// internally, and a mission end must observe every event of its attempt.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Mission boundaries
	d.Register(CmdMissionStart, m.counted(m.handleMissionStart), dispatcher.Logged())
	d.Register(CmdMissionEnd, m.counted(m.handleMissionEnd), dispatcher.Logged())

	// Entity creation (need to cache before kills arrive)
	d.Register(CmdSpawn, m.counted(m.handleSpawn), dispatcher.Logged())

	// Combat events
	d.Register(CmdFired, m.counted(m.handleFired))
	d.Register(CmdHit, m.counted(m.handleHit))
	d.Register(CmdKill, m.counted(m.handleKill), dispatcher.Logged())
	d.Register(CmdState, m.counted(m.handleStateChange))

	// High-volume state updates
	d.Register(CmdSnapshot, m.counted(m.handleSnapshot))
}

func (m *Manager) counted(h dispatcher.HandlerFunc) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		res, err := h(e)
		if err != nil {
			m.failed.Inc()
			return nil, err
		}
		m.handled.Inc()
		return res, nil
	}
}

func (m *Manager) handleMissionStart(e dispatcher.Event) (any, error) {
	mission, err := payload[core.Mission](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.StartMission(mission); err != nil {
		return nil, fmt.Errorf("failed to start mission: %w", err)
	}
	m.deps.MissionContext.SetMission(*mission)
	m.deps.Logger.Info("Mission recording started",
		"missionId", mission.ID,
		"map", mission.MapName,
		"mission", mission.Index+1,
		"attempt", mission.Attempt)
	return mission.ID, nil
}

func (m *Manager) handleMissionEnd(e dispatcher.Event) (any, error) {
	result, err := payload[core.MatchResult](e)
	if err != nil {
		return nil, err
	}
	m.deps.MissionContext.Clear()
	if err := m.backend.EndMission(result); err != nil {
		return nil, fmt.Errorf("failed to end mission: %w", err)
	}
	m.deps.Logger.Info("Mission recording ended",
		"map", result.MapName,
		"outcome", result.Outcome.String(),
		"score", result.Score,
		"duration", result.Duration)
	m.upload()
	return nil, nil
}

func (m *Manager) handleSpawn(e dispatcher.Event) (any, error) {
	entity, err := payload[core.Entity](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.AddEntity(entity); err != nil {
		return nil, fmt.Errorf("failed to log new entity: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleFired(e dispatcher.Event) (any, error) {
	ev, err := payload[core.FiredEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordFiredEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to log fired event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleHit(e dispatcher.Event) (any, error) {
	ev, err := payload[core.HitEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordHitEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to log hit event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleKill(e dispatcher.Event) (any, error) {
	ev, err := payload[core.KillEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordKillEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to log kill event: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleStateChange(e dispatcher.Event) (any, error) {
	ev, err := payload[core.StateChangeEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordStateChange(ev); err != nil {
		return nil, fmt.Errorf("failed to log state change: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleSnapshot(e dispatcher.Event) (any, error) {
	frame, err := payload[core.FrameSnapshot](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordFrame(frame); err != nil {
		return nil, fmt.Errorf("failed to log frame: %w", err)
	}
	return nil, nil
}
