package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Mission{},
	&Entity{},
	&EntityState{},
	&FiredEvent{},
	&HitEvent{},
	&KillEvent{},
	&StateChange{},
	&RecorderPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// RecorderPerformance is a periodic sample of the recorder's write pipeline
type RecorderPerformance struct {
	Time                time.Time         `json:"time" gorm:"index:idx_time"`
	MissionID           uint              `json:"missionId" gorm:"index:idx_recorderperformance_mission_id"`
	Mission             Mission           `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	WriteQueueLengths   WriteQueueLengths `json:"writeQueueLengths" gorm:"embedded;embeddedPrefix:writequeue_"`
	LastWriteDurationMs float32           `json:"lastWriteDurationMs"`
	TickDurationMs      float32           `json:"tickDurationMs"`
}

func (*RecorderPerformance) TableName() string {
	return "recorder_performances"
}

// WriteQueueLengths is the model for the write queue lengths
type WriteQueueLengths struct {
	Entities     uint16 `json:"entities"`
	EntityStates uint16 `json:"entityStates"`
	FiredEvents  uint16 `json:"firedEvents"`
	HitEvents    uint16 `json:"hitEvents"`
	KillEvents   uint16 `json:"killEvents"`
	StateChanges uint16 `json:"stateChanges"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Mission is one attempt at a campaign mission. The result columns are
// filled in when the attempt ends.
type Mission struct {
	gorm.Model
	SessionID    string     `json:"sessionId" gorm:"size:64;index:idx_mission_session_id"`
	MissionIndex int        `json:"missionIndex"`
	Attempt      int        `json:"attempt" gorm:"default:1"`
	MapName      string     `json:"mapName" gorm:"size:127"`
	Objective    string     `json:"objective" gorm:"size:255"`
	Difficulty   string     `json:"difficulty" gorm:"size:16"`
	BotCount     int        `json:"botCount"`
	StartTime    time.Time  `json:"missionStart" gorm:"index:idx_mission_start"`
	Anchor       geom.Point `json:"anchor"` // EPSG:3857 origin of the arena

	Outcome  string         `json:"outcome" gorm:"size:32"`
	Winner   string         `json:"winner" gorm:"size:32"`
	Duration float32        `json:"duration"` // seconds of round time
	Score    int            `json:"score"`
	Kills    int            `json:"kills"`
	Deaths   int            `json:"deaths"`
	EndTime  sql.NullTime   `json:"missionEnd" gorm:"default:NULL"`
	Summary  datatypes.JSON `json:"summary" gorm:"type:jsonb;default:'{}'"` // per-entity tallies

	Entities     []Entity
	FiredEvents  []FiredEvent
	HitEvents    []HitEvent
	KillEvents   []KillEvent
	StateChanges []StateChange
}

func (*Mission) TableName() string {
	return "missions"
}

// Entity is the player or a bot.
// Uses composite primary key (MissionID, EntityID) - EntityID is assigned by the coordinator
type Entity struct {
	MissionID      uint           `json:"missionId" gorm:"primaryKey;autoIncrement:false"`
	EntityID       uint16         `json:"entityId" gorm:"primaryKey;autoIncrement:false"`
	Mission        Mission        `json:"-" gorm:"foreignkey:MissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"deletedAt" gorm:"index"`
	JoinTime       time.Time      `json:"joinTime" gorm:"NOT NULL;index:idx_entity_join_time"`
	Kind           string         `json:"kind" gorm:"size:16;default:bot"`
	Name           string         `json:"name" gorm:"size:64"`
	Team           string         `json:"team" gorm:"size:32"`
	Difficulty     string         `json:"difficulty" gorm:"size:16"`
	Weapon         string         `json:"weapon" gorm:"size:64"`
	SpawnPosition  geom.Point     `json:"spawnPosition"`
	SpawnElevation float32        `json:"spawnElevation"`
}

func (*Entity) TableName() string {
	return "entities"
}

// EntityState is an entity's observable state at one captured frame
type EntityState struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time"`
	MissionID uint      `json:"missionId" gorm:"index:idx_entitystate_mission_id"`
	Mission   Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Tick      uint      `json:"tick" gorm:"index:idx_entitystate_tick"`
	EntityID  uint16    `json:"entityId" gorm:"index:idx_entitystate_entity_id"`
	Entity    Entity    `json:"-" gorm:"foreignkey:MissionID,EntityID;references:MissionID,EntityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Position  geom.Point `json:"position"`
	Elevation float32    `json:"elevation"`
	Yaw       float32    `json:"yaw"`   // degrees
	Pitch     float32    `json:"pitch"` // degrees
	State     string     `json:"state" gorm:"size:32"`
	Health    float32    `json:"health"`
	Armor     float32    `json:"armor"`
	Alive     bool       `json:"alive" gorm:"default:true"`
	Ammo      int        `json:"ammo"`
	Reserve   int        `json:"reserve"`
}

func (*EntityState) TableName() string {
	return "entity_states"
}

// FiredEvent is a single discharged round
type FiredEvent struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time `json:"time"`
	MissionID  uint      `json:"missionId" gorm:"index:idx_firedevent_mission_id"`
	Mission    Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	ShooterID  uint16    `json:"shooterId" gorm:"index:idx_firedevent_shooter_id"`
	Tick       uint      `json:"tick" gorm:"index:idx_firedevent_tick;"`
	Weapon     string    `json:"weapon" gorm:"size:64"`
	Ammo       int       `json:"ammo"`       // rounds left in the magazine after the shot
	RecoilStep int       `json:"recoilStep"` // position in the recoil pattern

	StartPosition  geom.Point      `json:"startPos"`
	StartElevation float32         `json:"startElev"`
	Trace          geom.LineString `json:"trace"` // muzzle to the end of effective range
}

func (*FiredEvent) TableName() string {
	return "fired_events"
}

// HitEvent is damage resolved against an entity
type HitEvent struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time"`
	MissionID uint      `json:"missionId" gorm:"index:idx_hitevent_mission_id"`
	Mission   Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Tick      uint      `json:"tick" gorm:"index:idx_hitevent_tick;"`
	ShooterID uint16    `json:"shooterId" gorm:"index:idx_hitevent_shooter_id"`
	VictimID  uint16    `json:"victimId" gorm:"index:idx_hitevent_victim_id"`
	Weapon    string    `json:"weapon" gorm:"size:64"`
	Damage    float32   `json:"damage"`
	Absorbed  float32   `json:"absorbed"` // portion taken by armor
	Health    float32   `json:"health"`   // victim health after the hit
	Armor     float32   `json:"armor"`
	Distance  float32   `json:"distance"`

	Position  geom.Point `json:"position"`
	Elevation float32    `json:"elevation"`
}

func (*HitEvent) TableName() string {
	return "hit_events"
}

// KillEvent is an entity being defeated
type KillEvent struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time"`
	MissionID uint      `json:"missionId" gorm:"index:idx_killevent_mission_id"`
	Mission   Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Tick      uint      `json:"tick" gorm:"index:idx_killevent_tick;"`

	KillerID   uint16 `json:"killerId" gorm:"index:idx_killevent_killer_id"`
	KillerName string `json:"killerName" gorm:"size:64"`
	VictimID   uint16 `json:"victimId" gorm:"index:idx_killevent_victim_id"`
	VictimName string `json:"victimName" gorm:"size:64"`

	Weapon    string     `json:"weapon" gorm:"size:64"`
	Distance  float32    `json:"distance"`
	Position  geom.Point `json:"position"`
	Elevation float32    `json:"elevation"`
}

func (*KillEvent) TableName() string {
	return "kill_events"
}

// StateChange is a bot behavior transition
type StateChange struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time      time.Time `json:"time"`
	MissionID uint      `json:"missionId" gorm:"index:idx_statechange_mission_id"`
	Mission   Mission   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:MissionID;"`
	Tick      uint      `json:"tick" gorm:"index:idx_statechange_tick;"`
	EntityID  uint16    `json:"entityId" gorm:"index:idx_statechange_entity_id"`
	FromState string    `json:"from" gorm:"size:32"`
	ToState   string    `json:"to" gorm:"size:32"`

	Position  geom.Point `json:"position"`
	Elevation float32    `json:"elevation"`
}

func (*StateChange) TableName() string {
	return "state_changes"
}
