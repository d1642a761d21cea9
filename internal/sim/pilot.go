package sim

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cyborstrike/combatcore/internal/encounter"
	"github.com/cyborstrike/combatcore/internal/weapon"
)

// Action is what the pilot did in one tick.
type Action struct {
	Fired  bool
	Hit    bool
	Killed bool
}

// Pilot drives the player between ticks.
type Pilot interface {
	// Act runs before each tick.
	Act(c *encounter.Coordinator, dt float64) Action
}

// ScriptedPilot closes on the nearest hostile, keeps it in view and fires
// whenever the weapon is ready.
type ScriptedPilot struct {
	Speed      float64 // m/s
	EngageDist float64 // stops advancing inside this range
}

// NewScriptedPilot returns a pilot with the default walking speed.
func NewScriptedPilot() *ScriptedPilot {
	return &ScriptedPilot{Speed: 4, EngageDist: 12}
}

func (p *ScriptedPilot) Act(c *encounter.Coordinator, dt float64) Action {
	if c.State() != encounter.StatePlaying {
		return Action{}
	}
	player := c.Player()
	if !player.Alive() {
		return Action{}
	}

	pos := player.Position()
	target, ok := nearestHostile(c, pos)
	if !ok {
		player.SetVelocity(mgl64.Vec3{})
		return Action{}
	}

	to := target.Sub(pos)
	player.LookAt(target)
	player.SetVelocity(mgl64.Vec3{})
	if flat := (mgl64.Vec3{to[0], 0, to[2]}); flat.Len() > p.EngageDist && p.Speed > 0 {
		v := flat.Normalize().Mul(p.Speed)
		player.SetVelocity(v)
		player.SetPosition(pos.Add(v.Mul(dt)))
	}

	res, err := c.PlayerFire(to)
	switch {
	case err == nil:
		return Action{Fired: true, Hit: res.Hit, Killed: res.Damage.Defeated}
	case errors.Is(err, weapon.ErrEmptyMagazine):
		_ = c.PlayerReload()
	}
	return Action{}
}

func nearestHostile(c *encounter.Coordinator, from mgl64.Vec3) (mgl64.Vec3, bool) {
	var (
		best  mgl64.Vec3
		bestD = math.Inf(1)
		found bool
	)
	team := c.Player().Team()
	for _, b := range c.Bots() {
		if !b.Alive() || !b.Team().Opposes(team) {
			continue
		}
		if d := b.Position().Sub(from).Len(); d < bestD {
			best, bestD, found = b.Position(), d, true
		}
	}
	return best, found
}
