// pkg/core/mission.go
package core

import "time"

// GeoAnchor pins an arena origin to a real-world location so recorded
// positions can be projected for map tooling.
type GeoAnchor struct {
	Latitude  float64
	Longitude float64
}

// Mission represents one attempt at a campaign mission.
type Mission struct {
	ID         uint
	SessionID  string
	Index      int
	Attempt    int
	MapName    string
	Objective  string
	Difficulty string
	BotCount   int
	StartTime  time.Time
	Anchor     GeoAnchor
}

// Outcome is how a mission attempt ended.
type Outcome uint8

const (
	OutcomeVictory Outcome = iota
	OutcomeTimeout
	OutcomePlayerDefeated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeTimeout:
		return "timeout"
	case OutcomePlayerDefeated:
		return "player_defeated"
	default:
		return "unknown"
	}
}

// MatchResult summarizes a finished mission attempt.
type MatchResult struct {
	SessionID    string
	MissionIndex int
	Attempt      int
	MapName      string
	Outcome      Outcome
	Winner       Team
	Duration     float64 // seconds of round time
	Score        int
	Kills        int
	Deaths       int
	EndTime      time.Time
}

// UploadMetadata describes an exported after-action report.
type UploadMetadata struct {
	SessionID string
	MapName   string
	Objective string
	Outcome   string
	Duration  float64 // seconds
	Score     int
	Tag       string
}
