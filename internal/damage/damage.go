// Package damage converts incoming damage into health and armor loss.
//
// Resolve is the only place damage is applied; every hit, whichever side
// fired it, goes through it.
package damage

import (
	"errors"
	"math"
)

// ArmorAbsorption is the share of incoming damage armor can soak up.
const ArmorAbsorption = 0.5

var (
	// ErrInvalidDamage is returned for negative damage amounts.
	ErrInvalidDamage = errors.New("invalid damage amount")
	// ErrInvalidHeal is returned for negative heal or armor amounts.
	ErrInvalidHeal = errors.New("invalid heal amount")
	// ErrDefeated is returned when damage or healing targets a defeated entity.
	ErrDefeated = errors.New("entity already defeated")
)

// Result is the outcome of resolving one damage event.
type Result struct {
	Health     float64
	Armor      float64
	Defeated   bool
	Absorbed   float64 // armor lost
	HealthLoss float64
}

// Resolve applies amount to the given health and armor. Armor absorbs up to
// half the damage, limited by what armor remains; the rest comes off health,
// which is clamped at zero.
func Resolve(amount, health, armor float64) (Result, error) {
	if amount < 0 || math.IsNaN(amount) {
		return Result{Health: health, Armor: armor, Defeated: health <= 0}, ErrInvalidDamage
	}
	armor = math.Max(0, armor)

	absorbed := math.Min(armor, amount*ArmorAbsorption)
	loss := amount - absorbed

	newHealth := math.Max(0, health-loss)
	return Result{
		Health:     newHealth,
		Armor:      armor - absorbed,
		Defeated:   newHealth <= 0,
		Absorbed:   absorbed,
		HealthLoss: health - newHealth,
	}, nil
}
