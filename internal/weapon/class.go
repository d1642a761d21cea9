// Package weapon models ammunition, fire-rate gating, reloads, recoil and
// spread for a single weapon instance.
package weapon

// Type is the weapon family. It selects the recoil pattern.
type Type uint8

const (
	TypePistol Type = iota
	TypeRifle
	TypeSMG
	TypeShotgun
	TypeSniper
	TypeGrenade
	TypeKnife
	TypePlasma
	TypeRailgun
)

func (t Type) String() string {
	switch t {
	case TypePistol:
		return "pistol"
	case TypeRifle:
		return "rifle"
	case TypeSMG:
		return "smg"
	case TypeShotgun:
		return "shotgun"
	case TypeSniper:
		return "sniper"
	case TypeGrenade:
		return "grenade"
	case TypeKnife:
		return "knife"
	case TypePlasma:
		return "plasma"
	case TypeRailgun:
		return "railgun"
	default:
		return "unknown"
	}
}

// FireMode is the trigger behavior of a weapon class.
type FireMode uint8

const (
	ModeSingle FireMode = iota
	ModeBurst
	ModeAuto
	ModeEnhanced
)

func (m FireMode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeBurst:
		return "burst"
	case ModeAuto:
		return "auto"
	case ModeEnhanced:
		return "enhanced"
	default:
		return "unknown"
	}
}

// Class is the immutable configuration shared by every instance of a
// weapon. It is passed by value.
type Class struct {
	Name         string
	Type         Type
	Mode         FireMode
	Damage       float64
	FireInterval float64 // seconds between shots
	Accuracy     float64 // 0..1
	Range        float64
	Recoil       float64
	Magazine     int
	Reserve      int
	ReloadTime   float64 // seconds
	Enhanced     bool
}
