package damage

import "math"

// Vitals holds the health and armor of one entity.
type Vitals struct {
	Health    float64
	MaxHealth float64
	Armor     float64
	MaxArmor  float64
}

// NewVitals returns vitals at full health and armor.
func NewVitals(maxHealth, maxArmor float64) Vitals {
	return Vitals{
		Health:    maxHealth,
		MaxHealth: maxHealth,
		Armor:     maxArmor,
		MaxArmor:  maxArmor,
	}
}

// Alive reports whether health is above zero.
func (v *Vitals) Alive() bool {
	return v.Health > 0
}

// Fraction returns health as a share of max health.
func (v *Vitals) Fraction() float64 {
	if v.MaxHealth <= 0 {
		return 0
	}
	return v.Health / v.MaxHealth
}

// Apply resolves amount against the vitals. Defeated vitals and invalid
// amounts leave the state unchanged.
func (v *Vitals) Apply(amount float64) (Result, error) {
	if !v.Alive() {
		return Result{Health: v.Health, Armor: v.Armor, Defeated: true}, ErrDefeated
	}
	res, err := Resolve(amount, v.Health, v.Armor)
	if err != nil {
		return res, err
	}
	v.Health = res.Health
	v.Armor = res.Armor
	return res, nil
}

// Heal restores health up to the maximum and returns the amount restored.
func (v *Vitals) Heal(amount float64) (float64, error) {
	if amount < 0 || math.IsNaN(amount) {
		return 0, ErrInvalidHeal
	}
	if !v.Alive() {
		return 0, ErrDefeated
	}
	before := v.Health
	v.Health = math.Min(v.MaxHealth, v.Health+amount)
	return v.Health - before, nil
}

// AddArmor restores armor up to the maximum and returns the amount added.
func (v *Vitals) AddArmor(amount float64) (float64, error) {
	if amount < 0 || math.IsNaN(amount) {
		return 0, ErrInvalidHeal
	}
	before := v.Armor
	v.Armor = math.Min(v.MaxArmor, v.Armor+amount)
	return v.Armor - before, nil
}

// Restore resets health and armor to their maximums. It is the respawn path
// and the only way back from defeat.
func (v *Vitals) Restore() {
	v.Health = v.MaxHealth
	v.Armor = v.MaxArmor
}
