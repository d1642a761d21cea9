// pkg/core/types.go
package core

import "github.com/go-gl/mathgl/mgl64"

// Position3D is an arena-local coordinate in metres. Y is up.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PositionFrom converts a math vector into a Position3D.
func PositionFrom(v mgl64.Vec3) Position3D {
	return Position3D{X: v[0], Y: v[1], Z: v[2]}
}

// Vec3 returns the position as a math vector.
func (p Position3D) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// EntityID identifies a combat participant within a campaign session.
type EntityID uint16

// PlayerID is reserved for the player-side entity.
const PlayerID EntityID = 0

// Team is the side an entity fights for.
type Team uint8

const (
	TeamTerrorist Team = iota
	TeamCounterTerrorist
	TeamEnhanced
)

func (t Team) String() string {
	switch t {
	case TeamTerrorist:
		return "terrorist"
	case TeamCounterTerrorist:
		return "counter_terrorist"
	case TeamEnhanced:
		return "enhanced"
	default:
		return "unknown"
	}
}

// Opposes reports whether two teams are hostile to each other.
func (t Team) Opposes(other Team) bool {
	return t != other
}

// EntityKind distinguishes the player from bots.
type EntityKind uint8

const (
	KindPlayer EntityKind = iota
	KindBot
)

func (k EntityKind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "bot"
}
