// Package sim runs a campaign headless: a pilot drives the player, the
// coordinator ticks at a fixed rate and telemetry flows to the recorder,
// the monitor and InfluxDB.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cyborstrike/combatcore/internal/config"
	"github.com/cyborstrike/combatcore/internal/encounter"
	"github.com/cyborstrike/combatcore/internal/influx"
	"github.com/cyborstrike/combatcore/internal/monitor"
	"github.com/cyborstrike/combatcore/internal/worker"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// ErrInvalidTickRate is returned for a non-positive tick rate.
var ErrInvalidTickRate = errors.New("tick rate must be positive")

// Report summarizes a run.
type Report struct {
	Ticks       uint
	SimTime     time.Duration
	WallTime    time.Duration
	PlayerShots int
	PlayerHits  int
	BotShots    int
	BotHits     int
	Kills       int
	Transitions int
	Results     []core.MatchResult
	FinalState  encounter.GameState
	Score       int
}

// Runner drives one campaign.
type Runner struct {
	coord   *encounter.Coordinator
	cfg     config.SimConfig
	pilot   Pilot
	log     *slog.Logger
	monitor *monitor.Service
	influx  *influx.Manager
	worker  *worker.Manager
	sleep   func(time.Duration)
}

// Option configures a Runner.
type Option func(*Runner)

func WithPilot(p Pilot) Option {
	return func(r *Runner) { r.pilot = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMonitor publishes the HUD status after every tick.
func WithMonitor(m *monitor.Service) Option {
	return func(r *Runner) { r.monitor = m }
}

// WithInflux writes one performance point per simulated second and one
// point per finished attempt.
func WithInflux(m *influx.Manager) Option {
	return func(r *Runner) { r.influx = m }
}

// WithWorker adds the last DB write duration to performance points.
func WithWorker(w *worker.Manager) Option {
	return func(r *Runner) { r.worker = w }
}

// New creates a Runner for c.
func New(c *encounter.Coordinator, cfg config.SimConfig, opts ...Option) *Runner {
	r := &Runner{
		coord: c,
		cfg:   cfg,
		pilot: NewScriptedPilot(),
		log:   slog.New(slog.DiscardHandler),
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays until the campaign ends, cfg.Missions attempts have finished,
// cfg.MaxTicks have elapsed or ctx is done. The report covers whatever ran.
func (r *Runner) Run(ctx context.Context) (rep Report, err error) {
	if r.cfg.TickRate <= 0 {
		return rep, ErrInvalidTickRate
	}
	dt := 1 / r.cfg.TickRate
	step := time.Duration(dt * float64(time.Second))
	perSecond := max(1, uint(r.cfg.TickRate))

	if r.coord.State() == encounter.StateMenu {
		r.coord.StartCampaign()
	}
	if r.cfg.Tactical {
		r.coord.EnableTacticalMode(true)
	}

	started := time.Now()
	defer func() {
		rep.WallTime = time.Since(started)
		rep.FinalState = r.coord.State()
		rep.Score = r.coord.Score()
	}()

	for r.cfg.MaxTicks <= 0 || rep.Ticks < uint(r.cfg.MaxTicks) {
		if err = ctx.Err(); err != nil {
			return rep, err
		}

		tickStart := time.Now()
		act := r.pilot.Act(r.coord, dt)
		tr := r.coord.Tick(dt)
		elapsed := time.Since(tickStart)

		rep.Ticks++
		rep.SimTime += step
		if act.Fired {
			rep.PlayerShots++
		}
		if act.Hit {
			rep.PlayerHits++
		}
		if act.Killed {
			rep.Kills++
		}
		rep.BotShots += tr.Shots
		rep.BotHits += tr.Hits
		rep.Kills += tr.Kills
		rep.Transitions += tr.Transitions

		if r.monitor != nil {
			r.monitor.Update(r.coord.Status(), elapsed)
		}
		if rep.Ticks%perSecond == 0 {
			r.writePerf(tr, elapsed)
		}

		if tr.Result != nil {
			rep.Results = append(rep.Results, *tr.Result)
			r.writeMatch(*tr.Result)
			if r.cfg.Missions > 0 && len(rep.Results) >= r.cfg.Missions {
				break
			}
		}
		if s := r.coord.State(); s == encounter.StateGameOver || s == encounter.StateCampaignComplete {
			break
		}

		if r.cfg.Realtime && elapsed < step {
			r.sleep(step - elapsed)
		}
	}

	return rep, nil
}

func (r *Runner) writePerf(tr encounter.TickReport, elapsed time.Duration) {
	if r.influx == nil {
		return
	}
	var dbWrite time.Duration
	if r.worker != nil {
		dbWrite = r.worker.GetLastDBWriteDuration()
	}
	m := r.coord.Mission()
	p := influx.TickPoint(influx.TickStats{
		SessionID: m.SessionID,
		Mission:   m.Index + 1,
		Tick:      tr.Tick,
		Duration:  elapsed,
		BotsAlive: r.coord.HostilesAlive(),
		Shots:     tr.Shots,
		Hits:      tr.Hits,
		Kills:     tr.Kills,
		DBWrite:   dbWrite,
	}, time.Now())
	if err := r.influx.WritePoint(influx.BucketPerformance, p); err != nil {
		r.log.Debug("Failed to write tick point", "error", err)
	}
}

func (r *Runner) writeMatch(res core.MatchResult) {
	if r.influx == nil {
		return
	}
	if err := r.influx.WritePoint(influx.BucketMatches, influx.MatchPoint(res)); err != nil {
		r.log.Warn("Failed to write match point", "error", err)
	}
}

// String renders the run report printed at exit.
func (rep Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticks: %d (%s simulated, %s wall)\n", rep.Ticks, rep.SimTime, rep.WallTime.Round(time.Millisecond))
	fmt.Fprintf(&b, "Player: %d shots, %d hits\n", rep.PlayerShots, rep.PlayerHits)
	fmt.Fprintf(&b, "Bots: %d shots, %d hits\n", rep.BotShots, rep.BotHits)
	fmt.Fprintf(&b, "Kills: %d  Transitions: %d\n", rep.Kills, rep.Transitions)
	for _, res := range rep.Results {
		fmt.Fprintf(&b, "  mission %d attempt %d %-26s %-16s %6.1fs score %d\n",
			res.MissionIndex+1, res.Attempt, res.MapName, res.Outcome, res.Duration, res.Score)
	}
	fmt.Fprintf(&b, "Final: %s, score %d\n", rep.FinalState, rep.Score)
	return b.String()
}
