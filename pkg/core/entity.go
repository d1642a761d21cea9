// pkg/core/entity.go
package core

import "time"

// Entity is the registration record of a combat participant.
type Entity struct {
	ID         EntityID
	Kind       EntityKind
	Name       string
	Team       Team
	Difficulty string
	Weapon     string
	SpawnPos   Position3D
	JoinTime   time.Time
}

// EntitySnapshot is the per-tick observable state of an entity, consumed by
// rendering, HUD and telemetry collaborators.
type EntitySnapshot struct {
	ID       EntityID
	Kind     EntityKind
	Name     string
	Team     Team
	Position Position3D
	Forward  Position3D
	Yaw      float64
	Pitch    float64
	State    string
	Health   float64
	Armor    float64
	Alive    bool
	Ammo     int
	Reserve  int
}

// FrameSnapshot groups the entity snapshots produced by one tick.
type FrameSnapshot struct {
	Time     time.Time
	Tick     uint
	Entities []EntitySnapshot
}
