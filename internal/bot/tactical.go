package bot

import "math"

// Tactical overlay tuning.
const (
	AwarenessStart     = 0.7
	AwarenessRate      = 0.1
	PredictionAccuracy = 0.8
	MaxIntelligence    = 2.0
	TacticalAimBonus   = 0.1

	predictionAwareness = 0.9
)

// Overlay is the enhanced-AI layer. It tightens aim and grows an awareness
// scalar; it never adds states.
type Overlay struct {
	Enabled      bool
	Intelligence float64
	Awareness    float64
}

func (o *Overlay) enable(on bool) {
	if on && !o.Enabled {
		o.Awareness = AwarenessStart
	}
	o.Enabled = on
}

func (o *Overlay) advance(dt float64) {
	if !o.Enabled {
		return
	}
	o.Awareness = math.Min(1, o.Awareness+AwarenessRate*dt)
}

// predicts gates searching toward the projected opponent position.
func (o *Overlay) predicts() bool {
	return o.Enabled && o.Awareness >= predictionAwareness
}
