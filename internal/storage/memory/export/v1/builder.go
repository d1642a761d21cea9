package v1

import (
	"math"
	"sort"
	"time"

	"github.com/cyborstrike/combatcore/internal/weapon"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// defaultReach is used for weapons missing from the preset table.
const defaultReach = 100.0

// MissionData contains all the data needed to build an export
type MissionData struct {
	Mission  *core.Mission
	Result   *core.MatchResult
	Entities map[core.EntityID]*EntityRecord

	HitEvents    []core.HitEvent
	KillEvents   []core.KillEvent
	StateChanges []core.StateChangeEvent
}

// EntityRecord groups an entity with all its time-series data
type EntityRecord struct {
	Entity      core.Entity
	States      []StateRecord
	FiredEvents []core.FiredEvent
}

// StateRecord is one entity snapshot and the tick it was captured at
type StateRecord struct {
	Tick  uint
	State core.EntitySnapshot
}

// Build creates an Export from the mission data
func Build(data *MissionData) Export {
	export := Export{
		Version:    FormatVersion,
		SessionID:  data.Mission.SessionID,
		MapName:    data.Mission.MapName,
		Objective:  data.Mission.Objective,
		Difficulty: data.Mission.Difficulty,
		Mission:    data.Mission.Index + 1,
		Attempt:    data.Mission.Attempt,
		StartTime:  data.Mission.StartTime.UTC().Format(time.RFC3339),
		Anchor: Anchor{
			Latitude:  data.Mission.Anchor.Latitude,
			Longitude: data.Mission.Anchor.Longitude,
		},
		Entities: make([]Entity, 0),
		Events:   make([][]any, 0),
	}

	if r := data.Result; r != nil {
		export.Result = &Result{
			Outcome:  r.Outcome.String(),
			Winner:   r.Winner.String(),
			Duration: r.Duration,
			Score:    r.Score,
			Kills:    r.Kills,
			Deaths:   r.Deaths,
			EndTime:  r.EndTime.UTC().Format(time.RFC3339),
		}
	}

	var maxTick uint = 0

	// Viewers index entities by id, so array index must equal entity ID
	var maxEntityID core.EntityID = 0
	for id := range data.Entities {
		if id > maxEntityID {
			maxEntityID = id
		}
	}
	if len(data.Entities) > 0 {
		export.Entities = make([]Entity, maxEntityID+1)
	}

	for id, record := range data.Entities {
		entity := Entity{
			ID:          uint16(id),
			Name:        record.Entity.Name,
			Kind:        record.Entity.Kind.String(),
			Team:        record.Entity.Team.String(),
			IsPlayer:    boolToInt(record.Entity.Kind == core.KindPlayer),
			Difficulty:  record.Entity.Difficulty,
			Weapon:      record.Entity.Weapon,
			Positions:   make([][]any, 0, len(record.States)),
			FramesFired: make([][]any, 0, len(record.FiredEvents)),
		}
		if len(record.States) > 0 {
			entity.StartTick = record.States[0].Tick
		}

		// [tick, [x, y, z], yawDegrees, health, armor, alive, state]
		for _, st := range record.States {
			s := st.State
			entity.Positions = append(entity.Positions, []any{
				st.Tick,
				[]float64{s.Position.X, s.Position.Y, s.Position.Z},
				round2(s.Yaw * 180 / math.Pi),
				round2(s.Health),
				round2(s.Armor),
				boolToInt(s.Alive),
				s.State,
			})
			if st.Tick > maxTick {
				maxTick = st.Tick
			}
		}

		// [tick, [x, y, z]] where the point is the end of the weapon's reach
		for _, fired := range record.FiredEvents {
			end := fired.Origin.Vec3().Add(fired.Direction.Vec3().Mul(weapon.Reach(fired.Weapon, defaultReach)))
			entity.FramesFired = append(entity.FramesFired, []any{
				fired.Tick,
				[]float64{end[0], end[1], end[2]},
			})
		}

		export.Entities[id] = entity
	}

	export.EndTick = maxTick

	// Format: [tick, "hit", victimId, [causedById, weapon], distance, damage]
	for _, evt := range data.HitEvents {
		export.Events = append(export.Events, []any{
			evt.Tick,
			"hit",
			evt.VictimID,
			[]any{evt.ShooterID, evt.Weapon},
			round2(evt.Distance),
			round2(evt.Damage),
		})
	}

	// Format: [tick, "killed", victimId, [causedById, weapon], distance]
	for _, evt := range data.KillEvents {
		export.Events = append(export.Events, []any{
			evt.Tick,
			"killed",
			evt.VictimID,
			[]any{evt.KillerID, evt.Weapon},
			round2(evt.Distance),
		})
	}

	// Format: [tick, "state", entityId, from, to]
	for _, evt := range data.StateChanges {
		export.Events = append(export.Events, []any{
			evt.Tick,
			"state",
			evt.EntityID,
			evt.From,
			evt.To,
		})
	}

	sort.SliceStable(export.Events, func(i, j int) bool {
		return export.Events[i][0].(uint) < export.Events[j][0].(uint)
	})

	return export
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
