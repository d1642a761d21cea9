// Package bot implements the perception and behavior state machine of an
// autonomous combatant.
//
// A Bot is updated once per tick with a snapshot of its opponent. It owns its
// weapon and all of its timers; nothing is shared between bots.
package bot

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/cyborstrike/combatcore/internal/damage"
	"github.com/cyborstrike/combatcore/internal/weapon"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// Behavior tuning.
const (
	DefaultViewDistance = 50.0
	DefaultFieldOfView  = 90.0
	DefaultMaxHealth    = 100.0
	DefaultMaxArmor     = 100.0

	IdleDwell        = 2.0
	LostSightTimeout = 5.0
	SearchTimeout    = 10.0
	RetreatDuration  = 5.0
	DefendHold       = 10.0

	EngageRange      = 10.0
	ArrivalThreshold = 1.0
	PatrolRadius     = 10.0
	SearchRadius     = 10.0
	RetreatDistance  = 20.0
	CoverDistance    = 15.0

	RetreatHealthFraction = 0.5
	CoverHealthFraction   = 0.3

	TurnRate = 2.0
	ScanRate = 0.5
)

// ErrInvalidStateTransition is returned when a defeated bot is updated.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// Opponent is the per-tick view of the entity a bot fights.
type Opponent struct {
	ID       core.EntityID
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Alive    bool
}

// Outcome is what a bot reports after an update.
type Outcome struct {
	Shot        *weapon.Shot
	FireErr     error
	Visible     bool
	Transitions []Transition
}

// Option configures a Bot.
type Option func(*Bot)

// WithRand sets the random source shared by the bot and its weapon.
func WithRand(r weapon.Rand) Option {
	return func(b *Bot) {
		b.rng = r
	}
}

// WithLogger sets the logger for state changes and weapon faults.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bot) {
		b.log = l
	}
}

// WithWeapon arms the bot with the given class instead of the default pistol.
func WithWeapon(c weapon.Class) Option {
	return func(b *Bot) {
		b.weaponClass = c
	}
}

// WithViewDistance overrides the perception range.
func WithViewDistance(d float64) Option {
	return func(b *Bot) {
		b.viewDistance = d
	}
}

// WithFieldOfView overrides the view cone in degrees.
func WithFieldOfView(deg float64) Option {
	return func(b *Bot) {
		b.fov = deg
	}
}

// WithWaypoints replaces the patrol route.
func WithWaypoints(points ...mgl64.Vec3) Option {
	return func(b *Bot) {
		b.waypoints = points
	}
}

// WithYaw sets the initial heading in radians.
func WithYaw(yaw float64) Option {
	return func(b *Bot) {
		b.yaw = yaw
	}
}

// Bot is a single autonomous combatant. It is not safe for concurrent use.
type Bot struct {
	id         core.EntityID
	name       string
	team       core.Team
	difficulty Difficulty
	profile    Profile

	accuracy     float64
	reaction     float64
	speed        float64
	viewDistance float64
	fov          float64

	vitals   damage.Vitals
	spawn    mgl64.Vec3
	position mgl64.Vec3
	yaw      float64
	pitch    float64

	weaponClass weapon.Class
	weapon      *weapon.Weapon
	rng         weapon.Rand
	log         *slog.Logger

	state      State
	stateTimer float64
	sinceShot  float64
	pending    []Transition

	lastKnown         mgl64.Vec3
	lastKnownVelocity mgl64.Vec3
	visible           bool
	sinceSeen         float64
	coverSought       bool
	target            core.EntityID
	hasTarget         bool

	waypoints   []mgl64.Vec3
	waypoint    int
	destination mgl64.Vec3
	hasPath     bool

	tactical Overlay
}

// New creates a bot at spawn in the Idle state, facing -Z.
func New(id core.EntityID, name string, team core.Team, difficulty Difficulty, spawn mgl64.Vec3, opts ...Option) *Bot {
	p := difficulty.Profile()
	b := &Bot{
		id:           id,
		name:         name,
		team:         team,
		difficulty:   difficulty,
		profile:      p,
		accuracy:     p.Accuracy,
		reaction:     p.ReactionTime,
		speed:        p.MovementSpeed,
		viewDistance: DefaultViewDistance,
		fov:          DefaultFieldOfView,
		vitals:       damage.NewVitals(DefaultMaxHealth, DefaultMaxArmor),
		spawn:        spawn,
		position:     spawn,
		yaw:          -math.Pi / 2,
		weaponClass:  weapon.ClassGlock18,
		state:        StateIdle,
		tactical:     Overlay{Intelligence: p.Intelligence},
		waypoints: []mgl64.Vec3{
			spawn.Add(mgl64.Vec3{PatrolRadius, 0, 0}),
			spawn.Add(mgl64.Vec3{0, 0, PatrolRadius}),
			spawn.Add(mgl64.Vec3{-PatrolRadius, 0, 0}),
			spawn.Add(mgl64.Vec3{0, 0, -PatrolRadius}),
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(int64(id) + 1))
	}
	if b.log == nil {
		b.log = slog.New(slog.DiscardHandler)
	}
	b.log = b.log.With("bot", b.name, "id", b.id)
	b.weapon = weapon.New(b.weaponClass, b.rng)
	if p.Enhanced {
		b.tactical.enable(true)
	}
	return b
}

func (b *Bot) ID() core.EntityID {
	return b.id
}

func (b *Bot) Name() string {
	return b.name
}

func (b *Bot) Team() core.Team {
	return b.team
}

func (b *Bot) Difficulty() Difficulty {
	return b.difficulty
}

func (b *Bot) State() State {
	return b.state
}

// StateTimer is the time spent in the current state.
func (b *Bot) StateTimer() float64 {
	return b.stateTimer
}

func (b *Bot) Position() mgl64.Vec3 {
	return b.position
}

// Forward is the unit view direction.
func (b *Bot) Forward() mgl64.Vec3 {
	return forwardFrom(b.yaw, b.pitch)
}

func (b *Bot) Yaw() float64 {
	return b.yaw
}

func (b *Bot) Pitch() float64 {
	return b.pitch
}

func (b *Bot) Health() float64 {
	return b.vitals.Health
}

func (b *Bot) Armor() float64 {
	return b.vitals.Armor
}

func (b *Bot) Alive() bool {
	return b.vitals.Alive()
}

// Visible reports whether the opponent was seen on the last update.
func (b *Bot) Visible() bool {
	return b.visible
}

// LastKnown is where the opponent was last seen or last fired from.
func (b *Bot) LastKnown() mgl64.Vec3 {
	return b.lastKnown
}

// Target returns the assigned engagement target, if any.
func (b *Bot) Target() (core.EntityID, bool) {
	return b.target, b.hasTarget
}

// Destination returns the current movement goal and whether one is active.
func (b *Bot) Destination() (mgl64.Vec3, bool) {
	return b.destination, b.hasPath
}

func (b *Bot) WaypointIndex() int {
	return b.waypoint
}

// Accuracy and ReactionTime are the effective values after intelligence scaling.
func (b *Bot) Accuracy() float64 {
	return b.accuracy
}

func (b *Bot) ReactionTime() float64 {
	return b.reaction
}

// Tactical returns a copy of the overlay state.
func (b *Bot) Tactical() Overlay {
	return b.tactical
}

// WeaponClass returns the class of the owned weapon.
func (b *Bot) WeaponClass() weapon.Class {
	return b.weapon.Class()
}

// DamageMultiplier is the owned weapon's enhancement multiplier.
func (b *Bot) DamageMultiplier() float64 {
	return b.weapon.DamageMultiplier()
}

// Ammo returns loaded and reserve rounds.
func (b *Bot) Ammo() (int, int) {
	return b.weapon.Ammo(), b.weapon.Reserve()
}

// Snapshot returns the observable state for rendering and telemetry.
func (b *Bot) Snapshot() core.EntitySnapshot {
	return core.EntitySnapshot{
		ID:       b.id,
		Kind:     core.KindBot,
		Name:     b.name,
		Team:     b.team,
		Position: core.PositionFrom(b.position),
		Forward:  core.PositionFrom(b.Forward()),
		Yaw:      b.yaw,
		Pitch:    b.pitch,
		State:    b.state.String(),
		Health:   b.vitals.Health,
		Armor:    b.vitals.Armor,
		Alive:    b.vitals.Alive(),
		Ammo:     b.weapon.Ammo(),
		Reserve:  b.weapon.Reserve(),
	}
}

// SetIntelligence scales accuracy up and reaction time down from the tier
// baseline.
func (b *Bot) SetIntelligence(level float64) {
	b.tactical.Intelligence = level
	b.accuracy = math.Min(0.95, b.profile.Accuracy+(level-1)*0.1)
	b.reaction = math.Max(0.05, b.profile.ReactionTime-(level-1)*0.1)
}

// EnableTactical switches the enhanced-AI overlay.
func (b *Bot) EnableTactical(on bool) {
	b.tactical.enable(on)
}

// FlushTransitions returns and clears transitions not yet reported by Update.
func (b *Bot) FlushTransitions() []Transition {
	t := b.pending
	b.pending = nil
	return t
}

// Update advances the bot by dt seconds against a snapshot of its opponent.
// A defeated bot is left untouched.
func (b *Bot) Update(dt float64, opp Opponent) (Outcome, error) {
	if !b.vitals.Alive() {
		return Outcome{}, ErrInvalidStateTransition
	}
	if dt < 0 {
		dt = 0
	}
	b.stateTimer += dt
	b.sinceShot += dt
	b.tactical.advance(dt)

	wasVisible := b.visible
	b.perceive(dt, opp)

	out := Outcome{Visible: b.visible}
	b.evaluate(wasVisible)
	handlers[b.state](b, dt, opp, &out)
	b.move(dt)
	b.weapon.Update(dt)

	out.Transitions = b.FlushTransitions()
	return out, nil
}

func (b *Bot) perceive(dt float64, opp Opponent) {
	b.visible = opp.Alive && CanSee(b.position, b.Forward(), opp.Position, b.viewDistance, b.fov)
	if !b.visible {
		b.sinceSeen += dt
		return
	}
	b.sinceSeen = 0
	b.lastKnown = opp.Position
	b.lastKnownVelocity = opp.Velocity
	b.target = opp.ID
	b.hasTarget = true
}

// evaluate applies the transition rules in priority order.
func (b *Bot) evaluate(wasVisible bool) {
	if b.state == StateIdle && b.stateTimer >= IdleDwell {
		b.transition(StatePatrolling)
	}
	if b.visible && b.state != StateEngaging && (!b.state.committed() || !wasVisible) {
		b.transition(StateEngaging)
	}
	if b.state == StateEngaging && b.sinceSeen > LostSightTimeout {
		b.transition(StateSearching)
	}
	if b.state == StateSearching && b.stateTimer > SearchTimeout {
		b.transition(StatePatrolling)
	}
	if b.state == StateRetreating && b.stateTimer > RetreatDuration {
		b.transition(StatePatrolling)
	}
	if b.state == StateEngaging && b.vitals.Fraction() < CoverHealthFraction && !b.coverSought {
		b.takeCover()
	}
	if b.state == StateDefending && b.stateTimer > DefendHold {
		b.transition(StatePatrolling)
	}
}

func (b *Bot) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.stateTimer = 0
	b.hasPath = false
	b.pending = append(b.pending, Transition{From: from, To: to})
	b.log.Debug("state change", "from", from.String(), "to", to.String())
}

// AssignTarget makes opp the engagement target. Bots in a committed state
// keep their state; the others start engaging.
func (b *Bot) AssignTarget(opp Opponent) {
	if !b.vitals.Alive() || !opp.Alive {
		return
	}
	b.target = opp.ID
	b.hasTarget = true
	b.lastKnown = opp.Position
	b.lastKnownVelocity = opp.Velocity
	if b.state != StateEngaging && !b.state.committed() {
		b.transition(StateEngaging)
	}
}

// TakeDamage resolves a hit fired from source. A bot pushed under half health
// breaks off and retreats away from the shooter.
func (b *Bot) TakeDamage(amount float64, source mgl64.Vec3) (damage.Result, error) {
	res, err := b.vitals.Apply(amount)
	if err != nil {
		return res, err
	}
	b.lastKnown = source
	if res.Defeated {
		b.hasPath = false
		b.log.Debug("defeated", "state", b.state.String())
		return res, nil
	}
	if b.vitals.Fraction() < RetreatHealthFraction && !b.state.committed() {
		b.moveAway(RetreatDistance)
		b.transition(StateRetreating)
		b.hasPath = true
	}
	return res, nil
}

// Heal restores health. Healing back above the cover threshold lets the bot
// seek cover again later.
func (b *Bot) Heal(amount float64) (float64, error) {
	healed, err := b.vitals.Heal(amount)
	if err == nil && b.vitals.Fraction() >= CoverHealthFraction {
		b.coverSought = false
	}
	return healed, err
}

// Respawn restores full vitals and ammunition at the spawn point. The state
// held at defeat is kept.
func (b *Bot) Respawn() {
	b.vitals.Restore()
	b.weapon.Refill()
	b.position = b.spawn
	b.stateTimer = 0
	b.sinceShot = 0
	b.sinceSeen = 0
	b.visible = false
	b.coverSought = false
	b.hasPath = false
}

func (b *Bot) takeCover() {
	b.coverSought = true
	b.transition(StateDefending)
	b.moveAway(CoverDistance)
	b.hasPath = true
}

// moveAway sets the destination dist units from the last known opponent
// position, on the far side of the bot.
func (b *Bot) moveAway(dist float64) {
	away := b.position.Sub(b.lastKnown)
	if away.Len() < 1e-9 {
		away = b.Forward().Mul(-1)
	}
	b.destination = b.position.Add(away.Normalize().Mul(dist))
}

func (b *Bot) arrived() bool {
	return b.position.Sub(b.destination).Len() < ArrivalThreshold
}

func (b *Bot) move(dt float64) {
	if !b.hasPath {
		return
	}
	to := b.destination.Sub(b.position)
	dist := to.Len()
	step := b.speed * dt
	if dist <= step {
		b.position = b.destination
		return
	}
	b.position = b.position.Add(to.Mul(step / dist))
}

// turnTowards eases yaw and pitch toward target.
func (b *Bot) turnTowards(target mgl64.Vec3, dt float64) {
	to := target.Sub(b.position)
	l := to.Len()
	if l < 1e-9 {
		return
	}
	k := math.Min(1, TurnRate*dt)
	targetYaw := math.Atan2(to[2], to[0])
	targetPitch := math.Asin(math.Max(-1, math.Min(1, to[1]/l)))
	b.yaw = wrapAngle(b.yaw + wrapAngle(targetYaw-b.yaw)*k)
	b.pitch += (targetPitch - b.pitch) * k
}

func (b *Bot) idle(float64, Opponent, *Outcome) {}

func (b *Bot) patrol(dt float64, _ Opponent, _ *Outcome) {
	if len(b.waypoints) == 0 {
		return
	}
	if b.hasPath && b.arrived() {
		b.waypoint = (b.waypoint + 1) % len(b.waypoints)
		b.hasPath = false
	}
	if !b.hasPath {
		b.destination = b.waypoints[b.waypoint]
		b.hasPath = true
	}
	b.turnTowards(b.destination, dt)
}

func (b *Bot) search(dt float64, _ Opponent, _ *Outcome) {
	if b.hasPath && b.arrived() {
		b.hasPath = false
	}
	if !b.hasPath {
		b.destination = b.searchPoint()
		b.hasPath = true
	}
	b.turnTowards(b.destination, dt)
}

func (b *Bot) searchPoint() mgl64.Vec3 {
	center := b.lastKnown
	if b.tactical.predicts() {
		center = center.Add(b.lastKnownVelocity.Mul(b.sinceSeen * PredictionAccuracy))
		b.log.Debug("searching predicted position", "awareness", b.tactical.Awareness)
	}
	return center.Add(mgl64.Vec3{
		(b.rng.Float64()*2 - 1) * SearchRadius,
		0,
		(b.rng.Float64()*2 - 1) * SearchRadius,
	})
}

func (b *Bot) engage(dt float64, opp Opponent, out *Outcome) {
	target := b.lastKnown
	if b.visible {
		target = opp.Position
	}
	b.turnTowards(target, dt)

	if target.Sub(b.position).Len() > EngageRange {
		b.destination = target
		b.hasPath = true
		return
	}
	b.hasPath = false
	if !b.visible || b.sinceShot < b.reaction {
		return
	}
	b.sinceShot = 0
	b.fire(target, out)
}

func (b *Bot) fire(target mgl64.Vec3, out *Outcome) {
	aim := weapon.Spread(target.Sub(b.position), b.aimAccuracy(), weapon.BotSpreadScale, b.rng)
	shot, err := b.weapon.Fire(b.position, aim)
	if err != nil {
		out.FireErr = err
		if errors.Is(err, weapon.ErrEmptyMagazine) {
			b.log.Debug("magazine empty", "reserve", b.weapon.Reserve())
			if rerr := b.weapon.Reload(); rerr != nil {
				b.log.Debug("reload refused", "error", rerr)
			}
		}
		return
	}
	out.Shot = &shot
	if shot.Ammo == 0 {
		if rerr := b.weapon.Reload(); rerr != nil {
			b.log.Debug("reload refused", "error", rerr)
		}
	}
}

func (b *Bot) aimAccuracy() float64 {
	acc := b.accuracy
	if b.tactical.Enabled {
		acc += TacticalAimBonus
	}
	return math.Max(0, math.Min(1, acc))
}

func (b *Bot) retreat(dt float64, _ Opponent, _ *Outcome) {
	if !b.hasPath {
		return
	}
	if b.arrived() {
		b.hasPath = false
		return
	}
	b.turnTowards(b.destination, dt)
}

func (b *Bot) defend(dt float64, _ Opponent, _ *Outcome) {
	if b.hasPath {
		if !b.arrived() {
			b.turnTowards(b.destination, dt)
			return
		}
		b.hasPath = false
	}
	b.yaw = wrapAngle(b.yaw + ScanRate*dt)
}
