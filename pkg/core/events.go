// pkg/core/events.go
package core

import (
	"time"
)

// FiredEvent represents a successful weapon discharge.
type FiredEvent struct {
	ShooterID  EntityID
	Time       time.Time
	Tick       uint
	Weapon     string
	Origin     Position3D
	Direction  Position3D
	Ammo       int
	RecoilStep int
}

// HitEvent represents damage resolved against an entity.
type HitEvent struct {
	ShooterID EntityID
	VictimID  EntityID
	Time      time.Time
	Tick      uint
	Weapon    string
	Damage    float64
	Absorbed  float64
	Health    float64
	Armor     float64
	Distance  float64
	Position  Position3D
}

// KillEvent represents an entity being defeated.
type KillEvent struct {
	KillerID EntityID
	VictimID EntityID
	Time     time.Time
	Tick     uint
	Weapon   string
	Distance float64
	Position Position3D
}

// StateChangeEvent records a bot behavior transition.
type StateChangeEvent struct {
	EntityID EntityID
	Time     time.Time
	Tick     uint
	From     string
	To       string
	Position Position3D
}
