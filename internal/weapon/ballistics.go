package weapon

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shot is the ballistic result of a successful Fire.
type Shot struct {
	Weapon     string
	Origin     mgl64.Vec3
	Direction  mgl64.Vec3
	Range      float64
	RecoilStep int
	Ammo       int
}

// Hits tests the shot ray against a sphere and returns the distance to the
// first contact. Contacts beyond the weapon range miss.
func (s Shot) Hits(center mgl64.Vec3, radius float64) (float64, bool) {
	if s.Direction.Len() == 0 {
		return 0, false
	}
	d := s.Direction.Normalize()
	oc := center.Sub(s.Origin)
	if oc.Len() <= radius {
		return 0, true
	}
	t := oc.Dot(d)
	if t < 0 {
		return 0, false
	}
	closest2 := oc.Dot(oc) - t*t
	r2 := radius * radius
	if closest2 > r2 {
		return 0, false
	}
	dist := t - math.Sqrt(r2-closest2)
	if dist > s.Range {
		return 0, false
	}
	return dist, true
}
