package encounter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cyborstrike/combatcore/internal/damage"
	"github.com/cyborstrike/combatcore/internal/weapon"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// Player economy and recovery.
const (
	PlayerMaxHealth  = 100.0
	PlayerMaxArmor   = 100.0
	PlayerStartMoney = 800
	KillReward       = 300
	MissionReward    = 1000
	RegenRate        = 5.0 // health per second in tactical mode
)

// Player is the player-side combat state. Position, velocity and view are
// supplied by the input collaborator.
type Player struct {
	name   string
	team   core.Team
	vitals damage.Vitals
	weapon *weapon.Weapon

	spawn    mgl64.Vec3
	position mgl64.Vec3
	velocity mgl64.Vec3
	yaw      float64
	pitch    float64

	kills  int
	deaths int
	money  int
}

func newPlayer(name string, team core.Team, spawn mgl64.Vec3, class weapon.Class, rng weapon.Rand) *Player {
	p := &Player{
		name:   name,
		team:   team,
		vitals: damage.NewVitals(PlayerMaxHealth, PlayerMaxArmor),
		weapon: weapon.New(class, rng),
		spawn:  spawn,
		money:  PlayerStartMoney,
	}
	p.reset()
	return p
}

func (p *Player) Name() string {
	return p.name
}

func (p *Player) Team() core.Team {
	return p.team
}

func (p *Player) Position() mgl64.Vec3 {
	return p.position
}

// SetPosition moves the player. Defeated players stay where they fell.
func (p *Player) SetPosition(pos mgl64.Vec3) {
	if p.vitals.Alive() {
		p.position = pos
	}
}

func (p *Player) Velocity() mgl64.Vec3 {
	return p.velocity
}

func (p *Player) SetVelocity(v mgl64.Vec3) {
	p.velocity = v
}

// Forward is the unit view direction.
func (p *Player) Forward() mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(p.yaw) * math.Cos(p.pitch),
		math.Sin(p.pitch),
		math.Sin(p.yaw) * math.Cos(p.pitch),
	}
}

// LookAt turns the view toward target.
func (p *Player) LookAt(target mgl64.Vec3) {
	to := target.Sub(p.position)
	l := to.Len()
	if l == 0 {
		return
	}
	p.yaw = math.Atan2(to[2], to[0])
	p.pitch = math.Asin(to[1] / l)
}

func (p *Player) Health() float64 {
	return p.vitals.Health
}

func (p *Player) Armor() float64 {
	return p.vitals.Armor
}

func (p *Player) Alive() bool {
	return p.vitals.Alive()
}

// Heal restores health up to the maximum.
func (p *Player) Heal(amount float64) (float64, error) {
	return p.vitals.Heal(amount)
}

// AddArmor restores armor up to the maximum.
func (p *Player) AddArmor(amount float64) (float64, error) {
	return p.vitals.AddArmor(amount)
}

func (p *Player) Kills() int {
	return p.kills
}

func (p *Player) Deaths() int {
	return p.deaths
}

func (p *Player) Money() int {
	return p.money
}

// Ammo returns loaded and reserve rounds.
func (p *Player) Ammo() (int, int) {
	return p.weapon.Ammo(), p.weapon.Reserve()
}

func (p *Player) Reloading() bool {
	return p.weapon.Reloading()
}

func (p *Player) WeaponClass() weapon.Class {
	return p.weapon.Class()
}

// Snapshot returns the observable state of the player.
func (p *Player) Snapshot() core.EntitySnapshot {
	state := "alive"
	if !p.vitals.Alive() {
		state = "defeated"
	}
	return core.EntitySnapshot{
		ID:       core.PlayerID,
		Kind:     core.KindPlayer,
		Name:     p.name,
		Team:     p.team,
		Position: core.PositionFrom(p.position),
		Forward:  core.PositionFrom(p.Forward()),
		Yaw:      p.yaw,
		Pitch:    p.pitch,
		State:    state,
		Health:   p.vitals.Health,
		Armor:    p.vitals.Armor,
		Alive:    p.vitals.Alive(),
		Ammo:     p.weapon.Ammo(),
		Reserve:  p.weapon.Reserve(),
	}
}

func (p *Player) update(dt float64, regen bool) {
	p.weapon.Update(dt)
	if regen && p.vitals.Alive() {
		_, _ = p.vitals.Heal(RegenRate * dt)
	}
}

// reset puts the player back at spawn with full vitals and ammunition.
func (p *Player) reset() {
	p.vitals.Restore()
	p.weapon.Refill()
	p.position = p.spawn
	p.velocity = mgl64.Vec3{}
	p.yaw = -math.Pi / 2
	p.pitch = 0
}
