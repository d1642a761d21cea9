// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cyborstrike/combatcore/internal/geo"
	"github.com/cyborstrike/combatcore/internal/model"
	"github.com/cyborstrike/combatcore/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
	"gorm.io/datatypes"
)

// tallyToJSON converts per-entity kill tallies to datatypes.JSON for DB storage.
func tallyToJSON(tally map[string]int) datatypes.JSON {
	if len(tally) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(tally)
	return datatypes.JSON(data)
}

// CoreToMission converts a core.Mission to a GORM model.Mission.
// The anchor is stored projected.
func CoreToMission(m core.Mission) (model.Mission, error) {
	anchor, err := geo.Coords3857From4326(m.Anchor.Longitude, m.Anchor.Latitude)
	if err != nil {
		return model.Mission{}, fmt.Errorf("mission anchor: %w", err)
	}
	out := model.Mission{
		SessionID:    m.SessionID,
		MissionIndex: m.Index,
		Attempt:      m.Attempt,
		MapName:      m.MapName,
		Objective:    m.Objective,
		Difficulty:   m.Difficulty,
		BotCount:     m.BotCount,
		StartTime:    m.StartTime,
		Anchor:       anchor,
		Summary:      tallyToJSON(nil),
	}
	out.ID = m.ID
	return out, nil
}

// ApplyResult copies a finished attempt's result onto its mission row.
func ApplyResult(dst *model.Mission, r core.MatchResult, tally map[string]int) {
	dst.Outcome = r.Outcome.String()
	dst.Winner = r.Winner.String()
	dst.Duration = float32(r.Duration)
	dst.Score = r.Score
	dst.Kills = r.Kills
	dst.Deaths = r.Deaths
	dst.EndTime = sql.NullTime{Time: r.EndTime, Valid: !r.EndTime.IsZero()}
	dst.Summary = tallyToJSON(tally)
}

// CoreToEntity converts a core.Entity to a GORM model.Entity.
// core.Entity.ID maps to GORM Entity.EntityID.
func CoreToEntity(anchor core.GeoAnchor, e core.Entity) (model.Entity, error) {
	pos, elev, err := geo.Project(anchor, e.SpawnPos)
	if err != nil {
		return model.Entity{}, fmt.Errorf("entity %d spawn: %w", e.ID, err)
	}
	return model.Entity{
		EntityID:       uint16(e.ID),
		JoinTime:       e.JoinTime,
		Kind:           e.Kind.String(),
		Name:           e.Name,
		Team:           e.Team.String(),
		Difficulty:     e.Difficulty,
		Weapon:         e.Weapon,
		SpawnPosition:  pos,
		SpawnElevation: float32(elev),
	}, nil
}

// CoreToEntityState converts one entity of a frame to a GORM model.EntityState.
func CoreToEntityState(anchor core.GeoAnchor, f core.FrameSnapshot, s core.EntitySnapshot) (model.EntityState, error) {
	pos, elev, err := geo.Project(anchor, s.Position)
	if err != nil {
		return model.EntityState{}, fmt.Errorf("entity %d at tick %d: %w", s.ID, f.Tick, err)
	}
	return model.EntityState{
		Time:      f.Time,
		Tick:      f.Tick,
		EntityID:  uint16(s.ID),
		Position:  pos,
		Elevation: float32(elev),
		Yaw:       float32(mgl64.RadToDeg(s.Yaw)),
		Pitch:     float32(mgl64.RadToDeg(s.Pitch)),
		State:     s.State,
		Health:    float32(s.Health),
		Armor:     float32(s.Armor),
		Alive:     s.Alive,
		Ammo:      s.Ammo,
		Reserve:   s.Reserve,
	}, nil
}

// CoreToEntityStates expands a frame into one row per entity. A single bad
// position rejects the whole frame.
func CoreToEntityStates(anchor core.GeoAnchor, f core.FrameSnapshot) ([]model.EntityState, error) {
	result := make([]model.EntityState, 0, len(f.Entities))
	for _, s := range f.Entities {
		row, err := CoreToEntityState(anchor, f, s)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// CoreToFiredEvent converts a core.FiredEvent to a GORM model.FiredEvent.
// The trace runs from the muzzle along the shot direction for reach metres.
func CoreToFiredEvent(anchor core.GeoAnchor, e core.FiredEvent, reach float64) (model.FiredEvent, error) {
	start, elev, err := geo.Project(anchor, e.Origin)
	if err != nil {
		return model.FiredEvent{}, fmt.Errorf("muzzle position: %w", err)
	}
	end := e.Origin.Vec3().Add(e.Direction.Vec3().Mul(reach))
	trace, err := geo.ShotTrace(anchor, e.Origin, core.PositionFrom(end))
	if err != nil {
		return model.FiredEvent{}, fmt.Errorf("shot trace: %w", err)
	}
	return model.FiredEvent{
		Time:           e.Time,
		Tick:           e.Tick,
		ShooterID:      uint16(e.ShooterID),
		Weapon:         e.Weapon,
		Ammo:           e.Ammo,
		RecoilStep:     e.RecoilStep,
		StartPosition:  start,
		StartElevation: float32(elev),
		Trace:          trace,
	}, nil
}

// CoreToHitEvent converts a core.HitEvent to a GORM model.HitEvent.
func CoreToHitEvent(anchor core.GeoAnchor, e core.HitEvent) (model.HitEvent, error) {
	pos, elev, err := geo.Project(anchor, e.Position)
	if err != nil {
		return model.HitEvent{}, fmt.Errorf("hit position: %w", err)
	}
	return model.HitEvent{
		Time:      e.Time,
		Tick:      e.Tick,
		ShooterID: uint16(e.ShooterID),
		VictimID:  uint16(e.VictimID),
		Weapon:    e.Weapon,
		Damage:    float32(e.Damage),
		Absorbed:  float32(e.Absorbed),
		Health:    float32(e.Health),
		Armor:     float32(e.Armor),
		Distance:  float32(e.Distance),
		Position:  pos,
		Elevation: float32(elev),
	}, nil
}

// CoreToKillEvent converts a core.KillEvent to a GORM model.KillEvent.
// Names are resolved by the caller since the event only carries IDs.
func CoreToKillEvent(anchor core.GeoAnchor, e core.KillEvent, killerName, victimName string) (model.KillEvent, error) {
	pos, elev, err := geo.Project(anchor, e.Position)
	if err != nil {
		return model.KillEvent{}, fmt.Errorf("kill position: %w", err)
	}
	return model.KillEvent{
		Time:       e.Time,
		Tick:       e.Tick,
		KillerID:   uint16(e.KillerID),
		KillerName: killerName,
		VictimID:   uint16(e.VictimID),
		VictimName: victimName,
		Weapon:     e.Weapon,
		Distance:   float32(e.Distance),
		Position:   pos,
		Elevation:  float32(elev),
	}, nil
}

// CoreToStateChange converts a core.StateChangeEvent to a GORM model.StateChange.
func CoreToStateChange(anchor core.GeoAnchor, e core.StateChangeEvent) (model.StateChange, error) {
	pos, elev, err := geo.Project(anchor, e.Position)
	if err != nil {
		return model.StateChange{}, fmt.Errorf("state change position: %w", err)
	}
	return model.StateChange{
		Time:      e.Time,
		Tick:      e.Tick,
		EntityID:  uint16(e.EntityID),
		FromState: e.From,
		ToState:   e.To,
		Position:  pos,
		Elevation: float32(elev),
	}, nil
}
