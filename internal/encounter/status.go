package encounter

import (
	"fmt"
	"strings"
)

// Status is the HUD view of the campaign.
type Status struct {
	State        GameState
	Mission      int // 1-based
	Missions     int
	Attempt      int
	MapName      string
	Objective    string
	RoundTime    float64
	TimeLeft     float64
	BotsAlive    int
	Health       float64
	Armor        float64
	Ammo         int
	Reserve      int
	Reloading    bool
	Score        int
	Kills        int
	Deaths       int
	Money        int
	Tactical     bool
	Intelligence float64
}

// Status reports the current campaign state.
func (c *Coordinator) Status() Status {
	ammo, reserve := c.player.Ammo()
	return Status{
		State:        c.state,
		Mission:      c.mission + 1,
		Missions:     len(c.cfg.Missions),
		Attempt:      c.attempt,
		MapName:      c.current.MapName,
		Objective:    c.current.Objective,
		RoundTime:    c.roundTime,
		TimeLeft:     max(0, c.cfg.RoundTimeLimit-c.roundTime),
		BotsAlive:    c.HostilesAlive(),
		Health:       c.player.Health(),
		Armor:        c.player.Armor(),
		Ammo:         ammo,
		Reserve:      reserve,
		Reloading:    c.player.Reloading(),
		Score:        c.score,
		Kills:        c.player.kills,
		Deaths:       c.player.deaths,
		Money:        c.player.money,
		Tactical:     c.tactical,
		Intelligence: c.intelligence,
	}
}

func (s Status) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", strings.ToUpper(s.State.String()))
	fmt.Fprintf(&b, "Mission: %d/%d (attempt %d) %s\n", s.Mission, s.Missions, s.Attempt, s.MapName)
	fmt.Fprintf(&b, "Objective: %s\n", s.Objective)
	fmt.Fprintf(&b, "Time: %.0fs (%.0fs left)\n", s.RoundTime, s.TimeLeft)
	fmt.Fprintf(&b, "Enemies: %d\n", s.BotsAlive)
	fmt.Fprintf(&b, "Health: %.0f Armor: %.0f\n", s.Health, s.Armor)
	ammo := fmt.Sprintf("%d/%d", s.Ammo, s.Reserve)
	if s.Reloading {
		ammo += " (reloading)"
	}
	fmt.Fprintf(&b, "Ammo: %s\n", ammo)
	fmt.Fprintf(&b, "Score: %d Kills: %d Deaths: %d Money: $%d\n", s.Score, s.Kills, s.Deaths, s.Money)
	if s.Tactical {
		fmt.Fprintf(&b, "Tactical AI: %.2f\n", s.Intelligence)
	}
	return b.String()
}
