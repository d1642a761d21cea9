package bot

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CanSee reports whether target is within viewDistance of origin and inside
// the cone of fovDegrees centred on forward. There is no occlusion test.
func CanSee(origin, forward, target mgl64.Vec3, viewDistance, fovDegrees float64) bool {
	toTarget := target.Sub(origin)
	dist := toTarget.Len()
	if dist > viewDistance || dist < 1e-6 {
		return false
	}
	fl := forward.Len()
	if fl == 0 {
		return false
	}
	cos := math.Max(-1, math.Min(1, toTarget.Dot(forward)/(dist*fl)))
	return math.Acos(cos) <= mgl64.DegToRad(fovDegrees/2)+1e-12
}

// forwardFrom builds a unit direction from yaw and pitch in radians.
func forwardFrom(yaw, pitch float64) mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw) * math.Cos(pitch),
	}
}

// wrapAngle maps an angle into (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
