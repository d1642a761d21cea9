// Package encounter runs a campaign of combat missions: it owns the bots and
// the player-side combat state, resolves shots through the damage model and
// decides when a mission is won or lost.
package encounter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cyborstrike/combatcore/internal/bot"
	"github.com/cyborstrike/combatcore/internal/damage"
	"github.com/cyborstrike/combatcore/internal/weapon"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// TacticalGrowth is the rate at which bot intelligence rises in tactical mode.
const TacticalGrowth = 0.1

var (
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrNotPlaying     = errors.New("no mission in progress")
	ErrInvalidMission = errors.New("invalid mission index")
)

// GameState is the campaign-level state.
type GameState uint8

const (
	StateMenu GameState = iota
	StatePlaying
	StateGameOver
	StateCampaignComplete
)

func (s GameState) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game_over"
	case StateCampaignComplete:
		return "campaign_complete"
	default:
		return "unknown"
	}
}

// Config tunes a campaign.
type Config struct {
	Missions       []MissionDef
	RoundTimeLimit float64 // seconds
	BaseBots       int
	FriendlyBots   int
	SpawnRadius    float64
	SpawnHeight    float64
	HitRadius      float64
	HardFrom       int
	ExpertFrom     int
	VictoryScore   int
	AutoRestart    bool
	SnapshotEvery  uint // ticks between frame snapshots, 0 disables

	PlayerName   string
	PlayerTeam   core.Team
	HostileTeam  core.Team
	PlayerSpawn  mgl64.Vec3
	PlayerWeapon weapon.Class
	BotWeapon    weapon.Class
}

// DefaultConfig returns the standard five-mission campaign.
func DefaultConfig() Config {
	return Config{
		Missions:       Campaign,
		RoundTimeLimit: 900,
		BaseBots:       3,
		SpawnRadius:    10,
		SpawnHeight:    1.8,
		HitRadius:      0.5,
		HardFrom:       2,
		ExpertFrom:     4,
		VictoryScore:   1000,
		AutoRestart:    true,
		SnapshotEvery:  10,
		PlayerName:     "Player",
		PlayerTeam:     core.TeamCounterTerrorist,
		HostileTeam:    core.TeamTerrorist,
		PlayerSpawn:    mgl64.Vec3{0, 1.8, 0},
		PlayerWeapon:   weapon.ClassM4A1,
		BotWeapon:      weapon.ClassGlock18,
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSeed seeds the coordinator's random source. Each bot gets its own
// source derived from it.
func WithSeed(seed int64) Option {
	return func(c *Coordinator) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		c.rec = r
	}
}

// WithClock sets the wall clock used to stamp mission starts.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithSessionID fixes the campaign session id.
func WithSessionID(id string) Option {
	return func(c *Coordinator) {
		c.sessionID = id
	}
}

// TickReport summarizes one tick.
type TickReport struct {
	Tick        uint
	State       GameState
	Shots       int
	Hits        int
	Kills       int
	Transitions int
	Result      *core.MatchResult // set when a mission attempt ended
}

// FireResult is the outcome of a player shot.
type FireResult struct {
	Shot   weapon.Shot
	Hit    bool
	Victim core.EntityID
	Damage damage.Result
}

type pendingShot struct {
	shooter *bot.Bot
	target  core.EntityID
	shot    weapon.Shot
}

// Coordinator owns a campaign. It is driven from a single goroutine.
type Coordinator struct {
	cfg       Config
	rng       *rand.Rand
	log       *slog.Logger
	rec       Recorder
	now       func() time.Time
	sessionID string
	metrics   *metrics

	state     GameState
	mission   int
	attempt   int
	current   core.Mission
	roundTime float64
	tick      uint

	score        int
	missionKills int
	lastResult   *core.MatchResult

	player *Player
	bots   []*bot.Bot
	nextID core.EntityID

	tactical     bool
	intelligence float64
}

// New creates a coordinator in the menu state.
func New(cfg Config, opts ...Option) (*Coordinator, error) {
	if len(cfg.Missions) == 0 {
		return nil, fmt.Errorf("campaign has no missions: %w", ErrInvalidMission)
	}
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		cfg:          cfg,
		metrics:      m,
		intelligence: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.rec == nil {
		c.rec = NopRecorder{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.player = newPlayer(cfg.PlayerName, cfg.PlayerTeam, cfg.PlayerSpawn, cfg.PlayerWeapon, c.childRand())
	return c, nil
}

func (c *Coordinator) childRand() *rand.Rand {
	return rand.New(rand.NewSource(c.rng.Int63()))
}

// Player returns the player-side combat state for input updates.
func (c *Coordinator) Player() *Player {
	return c.player
}

func (c *Coordinator) State() GameState {
	return c.state
}

// Mission returns the mission attempt in progress.
func (c *Coordinator) Mission() core.Mission {
	return c.current
}

func (c *Coordinator) Score() int {
	return c.score
}

func (c *Coordinator) RoundTime() float64 {
	return c.roundTime
}

// LastResult returns the most recent finished mission attempt.
func (c *Coordinator) LastResult() (core.MatchResult, bool) {
	if c.lastResult == nil {
		return core.MatchResult{}, false
	}
	return *c.lastResult, true
}

// Bots returns the active bots. The slice is a copy.
func (c *Coordinator) Bots() []*bot.Bot {
	out := make([]*bot.Bot, len(c.bots))
	copy(out, c.bots)
	return out
}

// HostilesAlive counts live bots opposing the player.
func (c *Coordinator) HostilesAlive() int {
	n := 0
	for _, b := range c.bots {
		if b.Alive() && b.Team().Opposes(c.player.team) {
			n++
		}
	}
	return n
}

// StartCampaign resets score and starts the first mission.
func (c *Coordinator) StartCampaign() {
	c.score = 0
	c.lastResult = nil
	c.log.Info("starting campaign", "session", c.sessionID, "missions", len(c.cfg.Missions))
	c.startMission(0, 1)
}

// StartMission jumps to the mission at index.
func (c *Coordinator) StartMission(index int) error {
	if index < 0 || index >= len(c.cfg.Missions) {
		return fmt.Errorf("mission %d: %w", index, ErrInvalidMission)
	}
	c.startMission(index, 1)
	return nil
}

// Restart replays the current mission after a loss.
func (c *Coordinator) Restart() error {
	if c.state != StateGameOver && c.state != StatePlaying {
		return ErrNotPlaying
	}
	c.startMission(c.mission, c.attempt+1)
	return nil
}

// EnableTacticalMode switches the enhanced-AI overlay on every bot and lets
// their intelligence grow while it stays on.
func (c *Coordinator) EnableTacticalMode(on bool) {
	c.tactical = on
	for _, b := range c.bots {
		c.applyTactical(b)
	}
	c.log.Info("tactical mode", "enabled", on, "intelligence", c.intelligence)
}

func (c *Coordinator) applyTactical(b *bot.Bot) {
	if !c.tactical {
		b.EnableTactical(b.Difficulty().Profile().Enhanced)
		return
	}
	b.EnableTactical(true)
	b.SetIntelligence(c.intelligence)
}

func (c *Coordinator) startMission(index, attempt int) {
	def := c.cfg.Missions[index]
	diff := c.difficultyFor(index)
	count := c.cfg.BaseBots + index

	c.mission = index
	c.attempt = attempt
	c.roundTime = 0
	c.missionKills = 0
	c.bots = nil
	c.player.reset()
	c.state = StatePlaying
	c.current = core.Mission{
		SessionID:  c.sessionID,
		Index:      index,
		Attempt:    attempt,
		MapName:    def.MapName,
		Objective:  def.Objective,
		Difficulty: diff.String(),
		BotCount:   count,
		StartTime:  c.now(),
		Anchor:     def.Anchor,
	}

	c.log.Info("mission started",
		"mission", index+1,
		"map", def.MapName,
		"attempt", attempt,
		"bots", count,
		"difficulty", diff.String())
	c.rec.MissionStarted(c.current)
	c.rec.EntitySpawned(core.Entity{
		ID:       core.PlayerID,
		Kind:     core.KindPlayer,
		Name:     c.player.name,
		Team:     c.player.team,
		Weapon:   c.player.WeaponClass().Name,
		SpawnPos: core.PositionFrom(c.player.spawn),
		JoinTime: c.current.StartTime,
	})

	for i := 0; i < count; i++ {
		c.spawn(c.cfg.HostileTeam, diff, c.randomSpawn())
	}
	for i := 0; i < c.cfg.FriendlyBots; i++ {
		c.spawn(c.player.team, diff, c.randomSpawn())
	}
}

func (c *Coordinator) randomSpawn() mgl64.Vec3 {
	r := c.cfg.SpawnRadius
	return mgl64.Vec3{
		c.rng.Float64()*2*r - r,
		c.cfg.SpawnHeight,
		c.rng.Float64()*2*r - r,
	}
}

// SpawnBot adds a bot to the running mission.
func (c *Coordinator) SpawnBot(team core.Team, difficulty bot.Difficulty, pos mgl64.Vec3) (*bot.Bot, error) {
	if c.state != StatePlaying {
		return nil, ErrNotPlaying
	}
	return c.spawn(team, difficulty, pos), nil
}

func (c *Coordinator) spawn(team core.Team, difficulty bot.Difficulty, pos mgl64.Vec3) *bot.Bot {
	c.nextID++
	name := fmt.Sprintf("CyborBot_%d", len(c.bots)+1)
	b := bot.New(c.nextID, name, team, difficulty, pos,
		bot.WithRand(c.childRand()),
		bot.WithLogger(c.log),
		bot.WithWeapon(c.cfg.BotWeapon),
	)
	if c.tactical {
		c.applyTactical(b)
	}
	c.bots = append(c.bots, b)

	c.log.Debug("bot spawned", "bot", name, "id", b.ID(), "team", team.String(), "difficulty", difficulty.String())
	c.rec.EntitySpawned(core.Entity{
		ID:         b.ID(),
		Kind:       core.KindBot,
		Name:       name,
		Team:       team,
		Difficulty: difficulty.String(),
		Weapon:     b.WeaponClass().Name,
		SpawnPos:   core.PositionFrom(pos),
		JoinTime:   c.eventTime(),
	})
	return b
}

// eventTime is simulated time: mission start plus elapsed round time.
func (c *Coordinator) eventTime() time.Time {
	return c.current.StartTime.Add(time.Duration(c.roundTime * float64(time.Second)))
}

// Tick advances the encounter by dt seconds. Every bot sees the same
// opponent snapshot; defeated bots are removed only after all updates.
func (c *Coordinator) Tick(dt float64) TickReport {
	rep := TickReport{State: c.state}
	if c.state != StatePlaying {
		return rep
	}
	if dt < 0 {
		dt = 0
	}
	c.tick++
	c.roundTime += dt
	rep.Tick = c.tick

	if c.tactical {
		c.intelligence = math.Min(bot.MaxIntelligence, c.intelligence+TacticalGrowth*dt)
		for _, b := range c.bots {
			b.SetIntelligence(c.intelligence)
		}
	}
	c.player.update(dt, c.tactical)

	playerView := bot.Opponent{
		ID:       core.PlayerID,
		Position: c.player.position,
		Velocity: c.player.velocity,
		Alive:    c.player.Alive(),
	}
	hostiles := c.hostileViews()

	var shots []pendingShot
	for _, b := range c.bots {
		if !b.Alive() {
			continue
		}
		opp := playerView
		hostile := b.Team().Opposes(c.player.team)
		if !hostile {
			opp = nearest(b.Position(), hostiles)
		}

		out, err := b.Update(dt, opp)
		if err != nil {
			continue
		}
		rep.Transitions += c.recordTransitions(b, out.Transitions)

		if hostile && out.Visible {
			b.AssignTarget(opp)
			rep.Transitions += c.recordTransitions(b, b.FlushTransitions())
		}
		if out.Shot != nil {
			shots = append(shots, pendingShot{shooter: b, target: opp.ID, shot: *out.Shot})
		}
	}

	for _, s := range shots {
		c.resolveBotShot(s, &rep)
	}
	c.prune()

	if c.cfg.SnapshotEvery > 0 && c.tick%c.cfg.SnapshotEvery == 0 {
		c.rec.FrameCaptured(c.Snapshot())
	}

	rep.Result = c.evaluate()
	rep.State = c.state
	return rep
}

func (c *Coordinator) hostileViews() []bot.Opponent {
	var out []bot.Opponent
	for _, b := range c.bots {
		if b.Alive() && b.Team().Opposes(c.player.team) {
			out = append(out, bot.Opponent{ID: b.ID(), Position: b.Position(), Alive: true})
		}
	}
	return out
}

func nearest(from mgl64.Vec3, candidates []bot.Opponent) bot.Opponent {
	best := bot.Opponent{}
	bestDist := math.Inf(1)
	for _, o := range candidates {
		if d := o.Position.Sub(from).Len(); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func (c *Coordinator) recordTransitions(b *bot.Bot, ts []bot.Transition) int {
	for _, t := range ts {
		c.rec.StateChanged(core.StateChangeEvent{
			EntityID: b.ID(),
			Time:     c.eventTime(),
			Tick:     c.tick,
			From:     t.From.String(),
			To:       t.To.String(),
			Position: core.PositionFrom(b.Position()),
		})
	}
	return len(ts)
}

func (c *Coordinator) recordShot(shooter core.EntityID, s weapon.Shot) {
	c.metrics.shots.Add(context.Background(), 1)
	c.rec.ShotFired(core.FiredEvent{
		ShooterID:  shooter,
		Time:       c.eventTime(),
		Tick:       c.tick,
		Weapon:     s.Weapon,
		Origin:     core.PositionFrom(s.Origin),
		Direction:  core.PositionFrom(s.Direction),
		Ammo:       s.Ammo,
		RecoilStep: s.RecoilStep,
	})
}

func (c *Coordinator) resolveBotShot(s pendingShot, rep *TickReport) {
	rep.Shots++
	c.recordShot(s.shooter.ID(), s.shot)

	target, ok := c.positionOf(s.target)
	if !ok {
		return
	}
	dist, hit := s.shot.Hits(target, c.cfg.HitRadius)
	if !hit {
		return
	}
	amount := s.shooter.WeaponClass().Damage * s.shooter.DamageMultiplier()
	res, err := c.damageEntity(s.target, amount, s.shooter.ID(), s.shot.Origin, s.shot.Weapon, dist)
	if err != nil {
		return
	}
	rep.Hits++
	if res.Defeated {
		rep.Kills++
	}
}

// positionOf finds a live entity.
func (c *Coordinator) positionOf(id core.EntityID) (mgl64.Vec3, bool) {
	if id == core.PlayerID {
		return c.player.position, c.player.Alive()
	}
	if b := c.findBot(id); b != nil && b.Alive() {
		return b.Position(), true
	}
	return mgl64.Vec3{}, false
}

func (c *Coordinator) findBot(id core.EntityID) *bot.Bot {
	for _, b := range c.bots {
		if b.ID() == id {
			return b
		}
	}
	return nil
}

// ApplyDamage registers a hit from an external source. The result carries
// the victim's new health and armor.
func (c *Coordinator) ApplyDamage(target core.EntityID, amount float64, source core.EntityID) (damage.Result, error) {
	if c.state != StatePlaying {
		return damage.Result{}, ErrNotPlaying
	}
	victim, ok := c.positionOf(target)
	if !ok && target != core.PlayerID && c.findBot(target) == nil {
		return damage.Result{}, fmt.Errorf("target %d: %w", target, ErrUnknownEntity)
	}
	origin, weaponName := victim, ""
	if source == core.PlayerID {
		origin, weaponName = c.player.position, c.player.WeaponClass().Name
	} else if b := c.findBot(source); b != nil {
		origin, weaponName = b.Position(), b.WeaponClass().Name
	}
	return c.damageEntity(target, amount, source, origin, weaponName, origin.Sub(victim).Len())
}

func (c *Coordinator) damageEntity(target core.EntityID, amount float64, shooter core.EntityID, origin mgl64.Vec3, weaponName string, dist float64) (damage.Result, error) {
	var (
		res damage.Result
		err error
		pos mgl64.Vec3
	)
	if target == core.PlayerID {
		res, err = c.player.vitals.Apply(amount)
		pos = c.player.position
	} else {
		b := c.findBot(target)
		if b == nil {
			return damage.Result{}, fmt.Errorf("target %d: %w", target, ErrUnknownEntity)
		}
		res, err = b.TakeDamage(amount, origin)
		pos = b.Position()
		c.recordTransitions(b, b.FlushTransitions())
	}
	if err != nil {
		return res, err
	}

	c.metrics.hits.Add(context.Background(), 1)
	c.rec.EntityHit(core.HitEvent{
		ShooterID: shooter,
		VictimID:  target,
		Time:      c.eventTime(),
		Tick:      c.tick,
		Weapon:    weaponName,
		Damage:    amount,
		Absorbed:  res.Absorbed,
		Health:    res.Health,
		Armor:     res.Armor,
		Distance:  dist,
		Position:  core.PositionFrom(pos),
	})
	if res.Defeated {
		c.onKill(shooter, target, weaponName, dist, pos)
	}
	return res, nil
}

func (c *Coordinator) onKill(killer, victim core.EntityID, weaponName string, dist float64, pos mgl64.Vec3) {
	if killer == core.PlayerID && victim != core.PlayerID {
		c.player.kills++
		c.player.money += KillReward
		c.missionKills++
	}
	c.metrics.kills.Add(context.Background(), 1)
	c.log.Info("entity defeated", "killer", killer, "victim", victim, "weapon", weaponName, "distance", dist)
	c.rec.EntityKilled(core.KillEvent{
		KillerID: killer,
		VictimID: victim,
		Time:     c.eventTime(),
		Tick:     c.tick,
		Weapon:   weaponName,
		Distance: dist,
		Position: core.PositionFrom(pos),
	})
}

// PlayerFire fires the player's weapon along aim and scores it against the
// nearest hostile bot in its path.
func (c *Coordinator) PlayerFire(aim mgl64.Vec3) (FireResult, error) {
	if c.state != StatePlaying {
		return FireResult{}, ErrNotPlaying
	}
	if !c.player.Alive() {
		return FireResult{}, damage.ErrDefeated
	}
	shot, err := c.player.weapon.Fire(c.player.position, aim)
	if err != nil {
		if errors.Is(err, weapon.ErrEmptyMagazine) {
			c.log.Debug("player magazine empty", "reserve", c.player.weapon.Reserve())
		}
		return FireResult{}, err
	}
	c.recordShot(core.PlayerID, shot)

	out := FireResult{Shot: shot}
	var (
		victim *bot.Bot
		best   = math.Inf(1)
	)
	for _, b := range c.bots {
		if !b.Alive() || !b.Team().Opposes(c.player.team) {
			continue
		}
		if d, ok := shot.Hits(b.Position(), c.cfg.HitRadius); ok && d < best {
			victim, best = b, d
		}
	}
	if victim == nil {
		return out, nil
	}

	amount := c.player.WeaponClass().Damage * c.player.weapon.DamageMultiplier()
	res, err := c.damageEntity(victim.ID(), amount, core.PlayerID, shot.Origin, shot.Weapon, best)
	if err != nil {
		return out, err
	}
	out.Hit = true
	out.Victim = victim.ID()
	out.Damage = res
	return out, nil
}

// PlayerReload starts a reload of the player's weapon.
func (c *Coordinator) PlayerReload() error {
	return c.player.weapon.Reload()
}

func (c *Coordinator) prune() {
	live := c.bots[:0]
	for _, b := range c.bots {
		if b.Alive() {
			live = append(live, b)
		}
	}
	for i := len(live); i < len(c.bots); i++ {
		c.bots[i] = nil
	}
	c.bots = live
}

// evaluate checks the win conditions: player defeat first, then a cleared
// map, then the round cap.
func (c *Coordinator) evaluate() *core.MatchResult {
	switch {
	case !c.player.Alive():
		return c.finish(core.OutcomePlayerDefeated)
	case c.HostilesAlive() == 0:
		return c.finish(core.OutcomeVictory)
	case c.roundTime >= c.cfg.RoundTimeLimit:
		return c.finish(core.OutcomeTimeout)
	}
	return nil
}

func (c *Coordinator) finish(outcome core.Outcome) *core.MatchResult {
	winner := c.cfg.HostileTeam
	switch outcome {
	case core.OutcomeVictory:
		winner = c.player.team
		c.score += c.cfg.VictoryScore
		c.player.money += MissionReward
	case core.OutcomePlayerDefeated:
		c.player.deaths++
	}

	res := core.MatchResult{
		SessionID:    c.sessionID,
		MissionIndex: c.mission,
		Attempt:      c.attempt,
		MapName:      c.current.MapName,
		Outcome:      outcome,
		Winner:       winner,
		Duration:     c.roundTime,
		Score:        c.score,
		Kills:        c.missionKills,
		Deaths:       c.player.deaths,
		EndTime:      c.eventTime(),
	}
	c.lastResult = &res
	c.metrics.missions.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome.String())))
	c.log.Info("mission ended",
		"mission", c.mission+1,
		"map", res.MapName,
		"outcome", outcome.String(),
		"winner", winner.String(),
		"duration", res.Duration,
		"kills", res.Kills,
		"score", res.Score)
	c.rec.MissionEnded(res)

	switch {
	case outcome == core.OutcomeVictory && c.mission+1 >= len(c.cfg.Missions):
		c.state = StateCampaignComplete
		c.bots = nil
		c.log.Info("campaign complete", "score", c.score)
	case outcome == core.OutcomeVictory:
		c.startMission(c.mission+1, 1)
	case c.cfg.AutoRestart:
		c.startMission(c.mission, c.attempt+1)
	default:
		c.state = StateGameOver
	}
	return &res
}

// Snapshot captures every entity for rendering and telemetry.
func (c *Coordinator) Snapshot() core.FrameSnapshot {
	ents := make([]core.EntitySnapshot, 0, len(c.bots)+1)
	ents = append(ents, c.player.Snapshot())
	for _, b := range c.bots {
		ents = append(ents, b.Snapshot())
	}
	return core.FrameSnapshot{
		Time:     c.eventTime(),
		Tick:     c.tick,
		Entities: ents,
	}
}
