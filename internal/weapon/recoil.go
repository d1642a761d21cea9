package weapon

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// RecoilKickScale converts pattern units into radians of aim deflection.
const RecoilKickScale = 0.001

type recoilShape struct {
	steps int
	x, y  float64
}

var recoilShapes = map[Type]recoilShape{
	TypeRifle:  {steps: 30, x: 0.5, y: 0.3},
	TypeSMG:    {steps: 25, x: 0.3, y: 0.2},
	TypePistol: {steps: 15, x: 0.2, y: 0.1},
	TypePlasma: {steps: 20, x: 0.1, y: 0.05},
}

var fallbackShape = recoilShape{steps: 10, x: 0.1, y: 0.1}

var patterns = buildPatterns()

func buildPatterns() map[Type][]mgl64.Vec2 {
	out := make(map[Type][]mgl64.Vec2)
	for t := TypePistol; t <= TypeRailgun; t++ {
		shape, ok := recoilShapes[t]
		if !ok {
			shape = fallbackShape
		}
		p := make([]mgl64.Vec2, shape.steps)
		for i := range p {
			side := 1.0
			if i%2 == 1 {
				side = -1
			}
			p[i] = mgl64.Vec2{float64(i) * shape.x * side, float64(i) * shape.y}
		}
		out[t] = p
	}
	return out
}

// Pattern returns a copy of the recoil pattern for a weapon type. Step i
// alternates horizontally and climbs linearly.
func Pattern(t Type) []mgl64.Vec2 {
	return slices.Clone(pattern(t))
}

func pattern(t Type) []mgl64.Vec2 {
	if p, ok := patterns[t]; ok {
		return p
	}
	return patterns[TypeGrenade]
}
