package bot

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyborstrike/combatcore/internal/damage"
	"github.com/cyborstrike/combatcore/internal/weapon"
	"github.com/cyborstrike/combatcore/pkg/core"
)

func newTestBot(d Difficulty, opts ...Option) *Bot {
	opts = append([]Option{WithRand(rand.New(rand.NewSource(11)))}, opts...)
	return New(1, "Bot_1", core.TeamTerrorist, d, mgl64.Vec3{}, opts...)
}

var absent = Opponent{ID: core.PlayerID}

func ahead(b *Bot, dist float64) Opponent {
	return Opponent{
		ID:       core.PlayerID,
		Position: b.Position().Add(b.Forward().Mul(dist)),
		Alive:    true,
	}
}

func run(t *testing.T, b *Bot, ticks int, dt float64, opp Opponent) []Transition {
	t.Helper()
	var all []Transition
	for i := 0; i < ticks; i++ {
		out, err := b.Update(dt, opp)
		require.NoError(t, err)
		all = append(all, out.Transitions...)
	}
	return all
}

func TestBot_Defaults(t *testing.T) {
	b := newTestBot(Normal)

	assert.Equal(t, StateIdle, b.State())
	assert.Equal(t, 100.0, b.Health())
	assert.Equal(t, 100.0, b.Armor())
	assert.True(t, b.Alive())
	assert.InDelta(t, 0, b.Forward().Sub(mgl64.Vec3{0, 0, -1}).Len(), 1e-9)
	assert.Equal(t, "Glock-18", b.WeaponClass().Name)
	assert.Equal(t, 0.7, b.Accuracy())
	assert.Equal(t, 0.5, b.ReactionTime())
	assert.False(t, b.Tactical().Enabled)
}

func TestBot_IdleToPatrolling(t *testing.T) {
	b := newTestBot(Normal)

	run(t, b, 1, 1.0, absent)
	assert.Equal(t, StateIdle, b.State())

	tr := run(t, b, 1, 1.0, absent)
	assert.Equal(t, StatePatrolling, b.State())
	assert.Equal(t, []Transition{{From: StateIdle, To: StatePatrolling}}, tr)
	assert.Zero(t, b.StateTimer())
}

func TestBot_NeverPerceivingStaysOnPatrol(t *testing.T) {
	tests := []struct {
		name string
		opp  Opponent
	}{
		{"no opponent", absent},
		{"out of range", Opponent{Position: mgl64.Vec3{0, 0, -500}, Alive: true}},
		{"dead in plain sight", Opponent{Position: mgl64.Vec3{0, 0, -5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBot(Hard)
			for i := 0; i < 2000; i++ {
				_, err := b.Update(0.05, tt.opp)
				require.NoError(t, err)
				assert.Contains(t, []State{StateIdle, StatePatrolling}, b.State())
			}
			assert.Equal(t, StatePatrolling, b.State())
		})
	}
}

func TestBot_PatrolVisitsWaypointsInOrder(t *testing.T) {
	b := newTestBot(Normal)
	run(t, b, 25, 0.1, absent)
	require.Equal(t, StatePatrolling, b.State())

	dest, ok := b.Destination()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{PatrolRadius, 0, 0}, dest)

	// 10 units at 3 units/s
	run(t, b, 40, 0.1, absent)
	assert.Equal(t, 1, b.WaypointIndex())
	dest, _ = b.Destination()
	assert.Equal(t, mgl64.Vec3{0, 0, PatrolRadius}, dest)
}

func TestBot_EngagesVisibleOpponent(t *testing.T) {
	b := newTestBot(Normal)
	opp := ahead(b, 5)

	out, err := b.Update(0.1, opp)
	require.NoError(t, err)
	assert.True(t, out.Visible)
	assert.Equal(t, StateEngaging, b.State())
	assert.Equal(t, []Transition{{From: StateIdle, To: StateEngaging}}, out.Transitions)
	assert.Equal(t, opp.Position, b.LastKnown())

	id, ok := b.Target()
	assert.True(t, ok)
	assert.Equal(t, core.PlayerID, id)
}

func TestBot_FiresOncePerReactionTime(t *testing.T) {
	b := newTestBot(Normal)
	opp := ahead(b, 5)

	shots := 0
	for i := 0; i < 30; i++ {
		out, err := b.Update(0.1, opp)
		require.NoError(t, err)
		if out.Shot != nil {
			shots++
			assert.Equal(t, b.Position(), out.Shot.Origin)
			assert.Equal(t, "Glock-18", out.Shot.Weapon)
		}
	}
	// 3 seconds at one shot per 0.5s
	assert.GreaterOrEqual(t, shots, 5)
	assert.LessOrEqual(t, shots, 7)

	ammo, _ := b.Ammo()
	assert.Equal(t, 20-shots, ammo)
}

func TestBot_LastRoundLogsRefusedReload(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	class := weapon.ClassGlock18
	class.Magazine = 1
	class.Reserve = 0
	b := newTestBot(Normal, WithWeapon(class), WithLogger(logger))
	opp := ahead(b, 5)

	var shot *weapon.Shot
	for i := 0; i < 30 && shot == nil; i++ {
		out, err := b.Update(0.1, opp)
		require.NoError(t, err)
		shot = out.Shot
	}
	require.NotNil(t, shot)
	assert.Equal(t, 0, shot.Ammo)

	assert.Contains(t, logs.String(), "reload refused")
	assert.Contains(t, logs.String(), weapon.ErrNoReserveAmmo.Error())
	assert.NotContains(t, logs.String(), "magazine empty")

	ammo, reserve := b.Ammo()
	assert.Zero(t, ammo)
	assert.Zero(t, reserve)
}

func TestBot_ClosesDistanceBeyondEngageRange(t *testing.T) {
	b := newTestBot(Normal)
	opp := ahead(b, 30)

	out, err := b.Update(0.1, opp)
	require.NoError(t, err)
	assert.Nil(t, out.Shot)
	assert.Equal(t, StateEngaging, b.State())

	before := b.Position().Sub(opp.Position).Len()
	run(t, b, 10, 0.1, opp)
	assert.Less(t, b.Position().Sub(opp.Position).Len(), before)
}

func TestBot_LosesSightThenSearchesThenPatrols(t *testing.T) {
	b := newTestBot(Normal)
	opp := ahead(b, 5)
	run(t, b, 1, 0.5, opp)
	require.Equal(t, StateEngaging, b.State())

	gone := opp
	gone.Alive = false

	tr := run(t, b, 10, 0.5, gone)
	assert.Empty(t, tr, "5s unseen is not yet over the limit")

	tr = run(t, b, 1, 0.5, gone)
	assert.Equal(t, []Transition{{From: StateEngaging, To: StateSearching}}, tr)

	_, searching := b.Destination()
	assert.True(t, searching)

	tr = run(t, b, 21, 0.5, gone)
	assert.Equal(t, []Transition{{From: StateSearching, To: StatePatrolling}}, tr)
}

func TestBot_SearchReacquires(t *testing.T) {
	b := newTestBot(Normal)
	opp := ahead(b, 5)
	run(t, b, 1, 0.5, opp)

	gone := opp
	gone.Alive = false
	run(t, b, 11, 0.5, gone)
	require.Equal(t, StateSearching, b.State())

	out, err := b.Update(0.01, ahead(b, 5))
	require.NoError(t, err)
	assert.Equal(t, StateEngaging, b.State())
	assert.Equal(t, []Transition{{From: StateSearching, To: StateEngaging}}, out.Transitions)
}

func TestBot_RetreatsWhenHurt(t *testing.T) {
	b := newTestBot(Normal)
	shooter := mgl64.Vec3{0, 0, -10}

	res, err := b.TakeDamage(120, shooter)
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Health)
	assert.Equal(t, StateRetreating, b.State())

	dest, ok := b.Destination()
	require.True(t, ok)
	assert.InDelta(t, 0, dest.Sub(mgl64.Vec3{0, 0, RetreatDistance}).Len(), 1e-9)

	out, err := b.Update(0.1, absent)
	require.NoError(t, err)
	assert.Equal(t, []Transition{{From: StateIdle, To: StateRetreating}}, out.Transitions)
	assert.Greater(t, b.Position()[2], 0.0)

	tr := run(t, b, 50, 0.1, absent)
	assert.Equal(t, []Transition{{From: StateRetreating, To: StatePatrolling}}, tr)
}

func TestBot_RetreatIgnoresOpponentAlreadyInView(t *testing.T) {
	b := newTestBot(Normal)
	opp := ahead(b, 5)
	run(t, b, 1, 0.1, opp)
	require.Equal(t, StateEngaging, b.State())

	_, err := b.TakeDamage(120, opp.Position)
	require.NoError(t, err)
	require.Equal(t, StateRetreating, b.State())

	run(t, b, 1, 0.1, opp)
	assert.Equal(t, StateRetreating, b.State())
}

func TestBot_LowHealthSeeksCover(t *testing.T) {
	b := newTestBot(Normal)
	_, err := b.TakeDamage(150, mgl64.Vec3{0, 0, -10})
	require.NoError(t, err)
	require.Equal(t, StateRetreating, b.State())
	require.Less(t, b.Health(), DefaultMaxHealth*CoverHealthFraction)

	run(t, b, 60, 0.1, absent)
	require.Equal(t, StatePatrolling, b.State())

	opp := ahead(b, 5)
	out, err := b.Update(0.01, opp)
	require.NoError(t, err)
	assert.Equal(t, []Transition{
		{From: StatePatrolling, To: StateEngaging},
		{From: StateEngaging, To: StateDefending},
	}, out.Transitions)
	assert.Nil(t, out.Shot)

	dest, ok := b.Destination()
	require.True(t, ok)
	away := b.Position().Sub(opp.Position).Normalize()
	assert.InDelta(t, CoverDistance, dest.Sub(b.Position()).Len(), 0.1)
	assert.Greater(t, dest.Sub(b.Position()).Normalize().Dot(away), 0.99)
}

func TestBot_DefendingScansThenPatrols(t *testing.T) {
	b := newTestBot(Normal)
	_, err := b.TakeDamage(150, mgl64.Vec3{0, 0, -10})
	require.NoError(t, err)
	run(t, b, 60, 0.1, absent)
	_, err = b.Update(0.01, ahead(b, 5))
	require.NoError(t, err)
	require.Equal(t, StateDefending, b.State())

	// reach the cover point: 15 units at 3 units/s
	run(t, b, 60, 0.1, absent)
	_, moving := b.Destination()
	assert.False(t, moving)

	yaw := b.Yaw()
	run(t, b, 1, 0.1, absent)
	assert.InDelta(t, ScanRate*0.1, wrapAngle(b.Yaw()-yaw), 1e-9)

	run(t, b, 40, 0.1, absent)
	assert.Equal(t, StatePatrolling, b.State())
}

func TestBot_DefeatedIsFrozen(t *testing.T) {
	b := newTestBot(Normal)
	res, err := b.TakeDamage(400, mgl64.Vec3{0, 0, -10})
	require.NoError(t, err)
	require.True(t, res.Defeated)

	pos, state := b.Position(), b.State()
	out, err := b.Update(1, ahead(b, 5))
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, pos, b.Position())
	assert.Equal(t, state, b.State())

	_, err = b.TakeDamage(10, mgl64.Vec3{})
	assert.ErrorIs(t, err, damage.ErrDefeated)

	b.Respawn()
	assert.True(t, b.Alive())
	assert.Equal(t, 100.0, b.Health())
	assert.Equal(t, state, b.State())
	_, err = b.Update(0.1, absent)
	assert.NoError(t, err)
}

func TestBot_AssignTarget(t *testing.T) {
	b := newTestBot(Normal)
	opp := Opponent{ID: core.PlayerID, Position: mgl64.Vec3{0, 0, 20}, Alive: true}

	b.AssignTarget(opp)
	assert.Equal(t, StateEngaging, b.State())
	assert.Equal(t, opp.Position, b.LastKnown())

	b.AssignTarget(Opponent{ID: 9, Alive: false})
	id, _ := b.Target()
	assert.Equal(t, core.PlayerID, id)
}

func TestBot_SetIntelligence(t *testing.T) {
	b := newTestBot(Normal)

	b.SetIntelligence(1.5)
	assert.InDelta(t, 0.75, b.Accuracy(), 1e-9)
	assert.InDelta(t, 0.45, b.ReactionTime(), 1e-9)

	b.SetIntelligence(2)
	assert.InDelta(t, 0.8, b.Accuracy(), 1e-9)

	e := newTestBot(Expert)
	e.SetIntelligence(2)
	assert.InDelta(t, 0.95, e.Accuracy(), 1e-9)
	assert.InDelta(t, 0.1, e.ReactionTime(), 1e-9)

	el := newTestBot(Elite)
	el.SetIntelligence(3)
	assert.InDelta(t, 0.05, el.ReactionTime(), 1e-9)
}

func TestBot_TacticalAwarenessGrows(t *testing.T) {
	b := newTestBot(Elite)
	require.True(t, b.Tactical().Enabled)
	assert.Equal(t, AwarenessStart, b.Tactical().Awareness)
	assert.Equal(t, MaxIntelligence, b.Tactical().Intelligence)

	run(t, b, 10, 0.1, absent)
	assert.InDelta(t, 0.8, b.Tactical().Awareness, 1e-9)

	run(t, b, 100, 0.1, absent)
	assert.Equal(t, 1.0, b.Tactical().Awareness)

	n := newTestBot(Normal)
	run(t, n, 10, 0.1, absent)
	assert.Zero(t, n.Tactical().Awareness)
	n.EnableTactical(true)
	assert.Equal(t, AwarenessStart, n.Tactical().Awareness)
}

func TestBot_DeterministicWithSeed(t *testing.T) {
	play := func() []mgl64.Vec3 {
		b := New(3, "Bot_3", core.TeamTerrorist, Hard, mgl64.Vec3{}, WithRand(rand.New(rand.NewSource(99))))
		opp := ahead(b, 6)
		var dirs []mgl64.Vec3
		for i := 0; i < 40; i++ {
			out, err := b.Update(0.1, opp)
			require.NoError(t, err)
			if out.Shot != nil {
				dirs = append(dirs, out.Shot.Direction)
			}
		}
		return dirs
	}
	a, b := play(), play()
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)
}

func TestBot_Snapshot(t *testing.T) {
	b := newTestBot(Normal)
	s := b.Snapshot()

	assert.Equal(t, core.EntityID(1), s.ID)
	assert.Equal(t, core.KindBot, s.Kind)
	assert.Equal(t, "idle", s.State)
	assert.True(t, s.Alive)
	assert.Equal(t, 20, s.Ammo)
	assert.Equal(t, 120, s.Reserve)
	assert.InDelta(t, -1, s.Forward.Z, 1e-9)
}

func TestCanSee(t *testing.T) {
	origin := mgl64.Vec3{}
	fwd := mgl64.Vec3{0, 0, -1}

	tests := []struct {
		name   string
		target mgl64.Vec3
		want   bool
	}{
		{"straight ahead", mgl64.Vec3{0, 0, -5}, true},
		{"to the side", mgl64.Vec3{5, 0, 0}, false},
		{"behind", mgl64.Vec3{0, 0, 5}, false},
		{"edge of cone", mgl64.Vec3{4.9, 0, -5}, true},
		{"just outside cone", mgl64.Vec3{5.1, 0, -5}, false},
		{"beyond view distance", mgl64.Vec3{0, 0, -51}, false},
		{"at view distance", mgl64.Vec3{0, 0, -50}, true},
		{"same spot", mgl64.Vec3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSee(origin, fwd, tt.target, DefaultViewDistance, DefaultFieldOfView))
		})
	}
}

func TestDifficultyProfiles(t *testing.T) {
	tests := []struct {
		d                    Difficulty
		acc, reaction, speed float64
		enhanced             bool
	}{
		{Easy, 0.5, 1.0, 2.5, false},
		{Normal, 0.7, 0.5, 3.0, false},
		{Hard, 0.8, 0.3, 3.5, false},
		{Expert, 0.9, 0.2, 4.0, false},
		{Elite, 0.95, 0.1, 4.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.d.String(), func(t *testing.T) {
			p := tt.d.Profile()
			assert.Equal(t, tt.acc, p.Accuracy)
			assert.Equal(t, tt.reaction, p.ReactionTime)
			assert.Equal(t, tt.speed, p.MovementSpeed)
			assert.Equal(t, tt.enhanced, p.Enhanced)

			parsed, err := ParseDifficulty(tt.d.String())
			require.NoError(t, err)
			assert.Equal(t, tt.d, parsed)
		})
	}

	_, err := ParseDifficulty("nightmare")
	assert.Error(t, err)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0, wrapAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, wrapAngle(-math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, wrapAngle(3*math.Pi/2), 1e-12)
}
