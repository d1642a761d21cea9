package convert

import (
	"github.com/cyborstrike/combatcore/internal/geo"
	"github.com/cyborstrike/combatcore/internal/model"
	"github.com/cyborstrike/combatcore/pkg/core"
	"github.com/wroge/wgs84"
)

var (
	outcomes = map[string]core.Outcome{
		core.OutcomeVictory.String():        core.OutcomeVictory,
		core.OutcomeTimeout.String():        core.OutcomeTimeout,
		core.OutcomePlayerDefeated.String(): core.OutcomePlayerDefeated,
	}
	teams = map[string]core.Team{
		core.TeamTerrorist.String():        core.TeamTerrorist,
		core.TeamCounterTerrorist.String(): core.TeamCounterTerrorist,
		core.TeamEnhanced.String():         core.TeamEnhanced,
	}
)

// anchorFromPoint recovers the WGS84 anchor from its stored projection.
func anchorFromPoint(m model.Mission) core.GeoAnchor {
	xy, ok := m.Anchor.XY()
	if !ok {
		return core.GeoAnchor{}
	}
	lon, lat, _ := wgs84.EPSG().Transform(3857, 4326)(xy.X, xy.Y, 0)
	return core.GeoAnchor{Latitude: lat, Longitude: lon}
}

// MissionToCore converts a GORM model.Mission to a core.Mission.
func MissionToCore(m model.Mission) core.Mission {
	return core.Mission{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Index:      m.MissionIndex,
		Attempt:    m.Attempt,
		MapName:    m.MapName,
		Objective:  m.Objective,
		Difficulty: m.Difficulty,
		BotCount:   m.BotCount,
		StartTime:  m.StartTime,
		Anchor:     anchorFromPoint(m),
	}
}

// MissionToResult converts a finished GORM model.Mission to a core.MatchResult.
// ok is false while the attempt is still running.
func MissionToResult(m model.Mission) (r core.MatchResult, ok bool) {
	outcome, known := outcomes[m.Outcome]
	if !known || !m.EndTime.Valid {
		return core.MatchResult{}, false
	}
	return core.MatchResult{
		SessionID:    m.SessionID,
		MissionIndex: m.MissionIndex,
		Attempt:      m.Attempt,
		MapName:      m.MapName,
		Outcome:      outcome,
		Winner:       teams[m.Winner],
		Duration:     float64(m.Duration),
		Score:        m.Score,
		Kills:        m.Kills,
		Deaths:       m.Deaths,
		EndTime:      m.EndTime.Time,
	}, true
}

// EntityToCore converts a GORM model.Entity to a core.Entity.
// GORM Entity.EntityID maps to core.Entity.ID.
func EntityToCore(anchor core.GeoAnchor, e model.Entity) core.Entity {
	kind := core.KindBot
	if e.Kind == core.KindPlayer.String() {
		kind = core.KindPlayer
	}
	return core.Entity{
		ID:         core.EntityID(e.EntityID),
		Kind:       kind,
		Name:       e.Name,
		Team:       teams[e.Team],
		Difficulty: e.Difficulty,
		Weapon:     e.Weapon,
		SpawnPos:   geo.Unproject(anchor, e.SpawnPosition, float64(e.SpawnElevation)),
		JoinTime:   e.JoinTime,
	}
}
