package weapon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Spread scale constants for the two aiming paths.
const (
	WeaponSpreadScale = 0.1
	BotSpreadScale    = 0.05
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Rand is the random source used for spread and search points. *rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
}

// SpreadAngle returns the maximum per-axis deflection for an accuracy.
func SpreadAngle(accuracy, k float64) float64 {
	return (1 - clamp01(accuracy)) * k
}

// Spread perturbs dir by two independent uniform offsets in
// [-SpreadAngle, SpreadAngle] and returns the renormalized direction.
func Spread(dir mgl64.Vec3, accuracy, k float64, rng Rand) mgl64.Vec3 {
	if dir.Len() == 0 {
		return dir
	}
	s := SpreadAngle(accuracy, k)
	if s == 0 || rng == nil {
		return dir.Normalize()
	}
	a := (rng.Float64()*2 - 1) * s
	b := (rng.Float64()*2 - 1) * s
	return deflect(dir, a, b)
}

// deflect moves dir sideways by h and vertically by v in its own frame.
func deflect(dir mgl64.Vec3, h, v float64) mgl64.Vec3 {
	d := dir.Normalize()
	right := d.Cross(worldUp)
	if right.Len() < 1e-9 {
		right = mgl64.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up := right.Cross(d)
	return d.Add(right.Mul(h)).Add(up.Mul(v)).Normalize()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
