// Package v1 contains the v1 after-action report format.
package v1

// FormatVersion is written into every report.
const FormatVersion = 1

// Export is the root JSON structure for v1 format
type Export struct {
	Version    int     `json:"version"`
	SessionID  string  `json:"sessionId"`
	MapName    string  `json:"mapName"`
	Objective  string  `json:"objective"`
	Difficulty string  `json:"difficulty"`
	Mission    int     `json:"mission"` // 1-based
	Attempt    int     `json:"attempt"`
	StartTime  string  `json:"startTime"`
	Anchor     Anchor  `json:"anchor"`
	Result     *Result `json:"result,omitempty"`
	EndTick    uint    `json:"endTick"`

	Entities []Entity `json:"entities"`
	Events   [][]any  `json:"events"`
}

// Anchor is the WGS84 location of the arena origin
type Anchor struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Result is the outcome of the attempt
type Result struct {
	Outcome  string  `json:"outcome"`
	Winner   string  `json:"winner"`
	Duration float64 `json:"duration"`
	Score    int     `json:"score"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	EndTime  string  `json:"endTime"`
}

// Entity represents the player or a bot
type Entity struct {
	ID          uint16  `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	Team        string  `json:"team"`
	IsPlayer    int     `json:"isPlayer"`
	Difficulty  string  `json:"difficulty,omitempty"`
	Weapon      string  `json:"weapon"`
	StartTick   uint    `json:"startTick"`
	Positions   [][]any `json:"positions"`
	FramesFired [][]any `json:"framesFired"`
}
