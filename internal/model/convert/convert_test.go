package convert

import (
	"math"
	"testing"
	"time"

	"github.com/cyborstrike/combatcore/internal/geo"
	"github.com/cyborstrike/combatcore/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var berlin = core.GeoAnchor{Latitude: 52.52, Longitude: 13.405}

func TestMissionRoundTrip(t *testing.T) {
	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	m := core.Mission{
		ID:         7,
		SessionID:  "s-1",
		Index:      2,
		Attempt:    3,
		MapName:    "cybor_industrial_complex",
		Objective:  "Infiltrate the industrial complex",
		Difficulty: "hard",
		BotCount:   5,
		StartTime:  start,
		Anchor:     berlin,
	}

	row, err := CoreToMission(m)
	require.NoError(t, err)
	assert.Equal(t, uint(7), row.ID)
	assert.Equal(t, 2, row.MissionIndex)
	assert.JSONEq(t, `{}`, string(row.Summary))

	back := MissionToCore(row)
	assert.Equal(t, m.SessionID, back.SessionID)
	assert.Equal(t, m.Attempt, back.Attempt)
	assert.Equal(t, m.StartTime, back.StartTime)
	assert.InDelta(t, berlin.Latitude, back.Anchor.Latitude, 1e-6)
	assert.InDelta(t, berlin.Longitude, back.Anchor.Longitude, 1e-6)
}

func TestApplyResult(t *testing.T) {
	end := time.Date(2026, 1, 2, 10, 5, 0, 0, time.UTC)
	row, err := CoreToMission(core.Mission{SessionID: "s-1", Attempt: 1})
	require.NoError(t, err)

	_, ok := MissionToResult(row)
	assert.False(t, ok, "running attempt has no result")

	res := core.MatchResult{
		SessionID: "s-1",
		Attempt:   1,
		Outcome:   core.OutcomePlayerDefeated,
		Winner:    core.TeamTerrorist,
		Duration:  42.5,
		Score:     200,
		Kills:     2,
		Deaths:    1,
		EndTime:   end,
	}
	ApplyResult(&row, res, map[string]int{"Player": 2})

	assert.Equal(t, "player_defeated", row.Outcome)
	assert.Equal(t, "terrorist", row.Winner)
	assert.True(t, row.EndTime.Valid)
	assert.JSONEq(t, `{"Player":2}`, string(row.Summary))

	back, ok := MissionToResult(row)
	require.True(t, ok)
	assert.Equal(t, res.Outcome, back.Outcome)
	assert.Equal(t, res.Winner, back.Winner)
	assert.Equal(t, 42.5, back.Duration)
	assert.Equal(t, end, back.EndTime)
}

func TestEntityRoundTrip(t *testing.T) {
	e := core.Entity{
		ID:         3,
		Kind:       core.KindBot,
		Name:       "Cybor-3",
		Team:       core.TeamEnhanced,
		Difficulty: "expert",
		Weapon:     "Cybor Railgun",
		SpawnPos:   core.Position3D{X: 10, Y: 1.8, Z: -25},
		JoinTime:   time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	}

	row, err := CoreToEntity(berlin, e)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), row.EntityID)
	assert.Equal(t, "bot", row.Kind)
	assert.Equal(t, "enhanced", row.Team)
	assert.InDelta(t, 1.8, row.SpawnElevation, 1e-6)

	back := EntityToCore(berlin, row)
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, e.Kind, back.Kind)
	assert.Equal(t, e.Team, back.Team)
	assert.InDelta(t, 10, back.SpawnPos.X, 1e-6)
	assert.InDelta(t, -25, back.SpawnPos.Z, 1e-6)
}

func TestEntityToCore_Player(t *testing.T) {
	row, err := CoreToEntity(berlin, core.Entity{ID: core.PlayerID, Kind: core.KindPlayer, Team: core.TeamCounterTerrorist})
	require.NoError(t, err)
	back := EntityToCore(berlin, row)
	assert.Equal(t, core.KindPlayer, back.Kind)
	assert.Equal(t, core.TeamCounterTerrorist, back.Team)
}

func TestCoreToEntityStates(t *testing.T) {
	frame := core.FrameSnapshot{
		Time: time.Date(2026, 1, 2, 10, 0, 1, 0, time.UTC),
		Tick: 60,
		Entities: []core.EntitySnapshot{
			{ID: 0, Position: core.Position3D{Y: 1.8}, Yaw: math.Pi / 2, Health: 100, Alive: true, Ammo: 30, Reserve: 90},
			{ID: 1, Position: core.Position3D{X: 5, Y: 1.8}, Pitch: -math.Pi / 4, State: "engaging", Health: 40, Armor: 10, Alive: true},
		},
	}

	rows, err := CoreToEntityStates(berlin, frame)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(60), rows[0].Tick)
	assert.Equal(t, frame.Time, rows[1].Time)
	assert.InDelta(t, 90, rows[0].Yaw, 1e-4)
	assert.InDelta(t, -45, rows[1].Pitch, 1e-4)
	assert.Equal(t, "engaging", rows[1].State)
	assert.Equal(t, float32(40), rows[1].Health)
	assert.Equal(t, 30, rows[0].Ammo)
}

func TestCoreToFiredEvent_Trace(t *testing.T) {
	e := core.FiredEvent{
		ShooterID:  core.PlayerID,
		Tick:       12,
		Weapon:     "M4A1",
		Origin:     core.Position3D{Y: 1.8},
		Direction:  core.Position3D{Z: -1},
		Ammo:       29,
		RecoilStep: 1,
	}

	row, err := CoreToFiredEvent(core.GeoAnchor{}, e, 140)
	require.NoError(t, err)
	assert.Equal(t, "M4A1", row.Weapon)
	assert.Equal(t, 29, row.Ammo)
	assert.InDelta(t, 1.8, row.StartElevation, 1e-6)
	assert.InDelta(t, 140, row.Trace.Length(), 1e-6)
}

func TestCoreToKillEvent(t *testing.T) {
	e := core.KillEvent{KillerID: 0, VictimID: 4, Tick: 99, Weapon: "AWP", Distance: 31.5, Position: core.Position3D{X: 1, Y: 1.8, Z: 2}}

	row, err := CoreToKillEvent(berlin, e, "Player", "Cybor-4")
	require.NoError(t, err)
	assert.Equal(t, uint16(4), row.VictimID)
	assert.Equal(t, "Player", row.KillerName)
	assert.Equal(t, "Cybor-4", row.VictimName)
	assert.Equal(t, float32(31.5), row.Distance)
	assert.False(t, row.Position.IsEmpty())
}

func TestCoreToHitAndStateChange(t *testing.T) {
	hit, err := CoreToHitEvent(berlin, core.HitEvent{ShooterID: 2, VictimID: 0, Damage: 28, Absorbed: 14, Health: 86, Armor: 86})
	require.NoError(t, err)
	assert.Equal(t, uint16(2), hit.ShooterID)
	assert.Equal(t, float32(14), hit.Absorbed)

	sc, err := CoreToStateChange(berlin, core.StateChangeEvent{EntityID: 5, From: "patrolling", To: "engaging", Tick: 3})
	require.NoError(t, err)
	assert.Equal(t, "patrolling", sc.FromState)
	assert.Equal(t, "engaging", sc.ToState)
	assert.Equal(t, uint(3), sc.Tick)
}

func TestConvertRejectsNonFinitePositions(t *testing.T) {
	bad := core.Position3D{X: math.NaN(), Y: 1.8}

	_, err := CoreToEntity(berlin, core.Entity{ID: 2, SpawnPos: bad})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = CoreToEntityStates(berlin, core.FrameSnapshot{Entities: []core.EntitySnapshot{{ID: 0}, {ID: 1, Position: bad}}})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = CoreToFiredEvent(berlin, core.FiredEvent{Origin: core.Position3D{Y: 1.8}, Direction: core.Position3D{Z: math.Inf(1)}}, 100)
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = CoreToHitEvent(berlin, core.HitEvent{Position: bad})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = CoreToKillEvent(berlin, core.KillEvent{Position: bad}, "a", "b")
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = CoreToStateChange(berlin, core.StateChangeEvent{Position: bad})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)

	_, err = CoreToMission(core.Mission{Anchor: core.GeoAnchor{Longitude: math.NaN()}})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinates)
}

func TestCoreToFiredEvent_ZeroReach(t *testing.T) {
	row, err := CoreToFiredEvent(berlin, core.FiredEvent{Origin: core.Position3D{Y: 1.8}, Direction: core.Position3D{Z: -1}}, 0)
	require.NoError(t, err)
	assert.True(t, row.Trace.IsEmpty())
}
