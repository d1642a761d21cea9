package weapon

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// Enhancement bonuses for enhanced-mode weapons.
const (
	EnhancedDamageMultiplier = 1.5
	EnhancedAccuracyBonus    = 0.1
	EnhancedFireRateBonus    = 0.2
)

// timing tolerance for accumulated float clocks
const epsilon = 1e-9

var (
	// ErrWeaponBusy is returned while reloading or before the fire interval elapsed.
	ErrWeaponBusy = errors.New("weapon busy")
	// ErrEmptyMagazine is returned when firing with no rounds loaded.
	ErrEmptyMagazine = errors.New("magazine empty")
	// ErrNoReserveAmmo is returned when reloading with an empty reserve.
	ErrNoReserveAmmo = errors.New("no reserve ammo")
	// ErrMagazineFull is returned when reloading a full magazine.
	ErrMagazineFull = errors.New("magazine full")
)

// Weapon is one weapon instance. It is owned by a single entity and is not
// safe for concurrent use.
type Weapon struct {
	class Class
	rng   Rand

	ammo      int
	reserve   int
	reloading bool
	progress  float64
	recoil    int

	// fire clock, advanced only by Update
	clock         float64
	lastFire      float64
	hasFired      bool
	firedThisTick bool

	enhanced bool
}

// New creates a loaded weapon of the given class. Enhanced classes start
// with enhancement enabled.
func New(class Class, rng Rand) *Weapon {
	return &Weapon{
		class:    class,
		rng:      rng,
		ammo:     class.Magazine,
		reserve:  class.Reserve,
		enhanced: class.Enhanced,
	}
}

// Class returns the immutable class configuration.
func (w *Weapon) Class() Class {
	return w.class
}

func (w *Weapon) Name() string {
	return w.class.Name
}

// Ammo returns the rounds currently loaded.
func (w *Weapon) Ammo() int {
	return w.ammo
}

// Reserve returns the rounds carried outside the magazine.
func (w *Weapon) Reserve() int {
	return w.reserve
}

func (w *Weapon) Reloading() bool {
	return w.reloading
}

// ReloadProgress is the completed fraction of the current reload.
func (w *Weapon) ReloadProgress() float64 {
	return w.progress
}

func (w *Weapon) RecoilStep() int {
	return w.recoil
}

func (w *Weapon) Enhanced() bool {
	return w.enhanced
}

// SetEnhanced toggles the enhancement bonuses.
func (w *Weapon) SetEnhanced(on bool) {
	w.enhanced = on
}

// DamageMultiplier is applied by callers to the class damage.
func (w *Weapon) DamageMultiplier() float64 {
	if w.enhanced {
		return EnhancedDamageMultiplier
	}
	return 1
}

// EffectiveAccuracy is base accuracy plus any enhancement bonus, clamped to [0,1].
func (w *Weapon) EffectiveAccuracy() float64 {
	acc := w.class.Accuracy
	if w.enhanced {
		acc += EnhancedAccuracyBonus
	}
	return clamp01(acc)
}

// FireInterval is the minimum time between successful shots.
func (w *Weapon) FireInterval() float64 {
	if w.enhanced {
		return w.class.FireInterval * (1 - EnhancedFireRateBonus)
	}
	return w.class.FireInterval
}

// Fire discharges one round from origin along aim. On failure the weapon
// state is untouched.
func (w *Weapon) Fire(origin, aim mgl64.Vec3) (Shot, error) {
	if w.reloading {
		return Shot{}, ErrWeaponBusy
	}
	if w.ammo <= 0 {
		return Shot{}, ErrEmptyMagazine
	}
	if w.hasFired && w.clock-w.lastFire+epsilon < w.FireInterval() {
		return Shot{}, ErrWeaponBusy
	}

	dir := aim
	p := pattern(w.class.Type)
	if kick := p[w.recoil]; kick != (mgl64.Vec2{}) && dir.Len() > 0 {
		scale := w.class.Recoil * RecoilKickScale
		dir = deflect(dir, kick[0]*scale, kick[1]*scale)
	}
	dir = Spread(dir, w.EffectiveAccuracy(), WeaponSpreadScale, w.rng)

	w.ammo--
	step := w.recoil
	w.recoil = min(w.recoil+1, len(p)-1)
	w.lastFire = w.clock
	w.hasFired = true
	w.firedThisTick = true

	return Shot{
		Weapon:     w.class.Name,
		Origin:     origin,
		Direction:  dir,
		Range:      w.class.Range,
		RecoilStep: step,
		Ammo:       w.ammo,
	}, nil
}

// Reload starts a reload. Rounds move from reserve when Update completes it.
func (w *Weapon) Reload() error {
	switch {
	case w.reloading:
		return ErrWeaponBusy
	case w.ammo >= w.class.Magazine:
		return ErrMagazineFull
	case w.reserve <= 0:
		return ErrNoReserveAmmo
	}
	w.reloading = true
	w.progress = 0
	return nil
}

// Update advances the fire clock, reload progress and recoil recovery by dt
// seconds.
func (w *Weapon) Update(dt float64) {
	if dt < 0 {
		dt = 0
	}
	w.clock += dt

	if w.reloading {
		if w.class.ReloadTime <= 0 {
			w.progress = 1
		} else {
			w.progress += dt / w.class.ReloadTime
		}
		if w.progress+epsilon >= 1 {
			moved := min(w.class.Magazine-w.ammo, w.reserve)
			w.ammo += moved
			w.reserve -= moved
			w.reloading = false
			w.progress = 0
		}
	}

	if !w.firedThisTick && w.recoil > 0 {
		w.recoil--
	}
	w.firedThisTick = false
}

// Refill restores a full magazine and reserve and clears transient state.
func (w *Weapon) Refill() {
	w.ammo = w.class.Magazine
	w.reserve = w.class.Reserve
	w.reloading = false
	w.progress = 0
	w.recoil = 0
}
