package bot

import (
	"fmt"
	"strings"
)

// Difficulty selects a bot's accuracy, reaction time and speed.
type Difficulty uint8

const (
	Easy Difficulty = iota
	Normal
	Hard
	Expert
	Elite
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	case Elite:
		return "elite"
	default:
		return "unknown"
	}
}

// ParseDifficulty accepts the names returned by Difficulty.String.
func ParseDifficulty(s string) (Difficulty, error) {
	for d := Easy; d <= Elite; d++ {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	return Normal, fmt.Errorf("unknown difficulty: %s", s)
}

// Profile is the tuning fixed by a difficulty tier.
type Profile struct {
	Accuracy      float64
	ReactionTime  float64 // seconds between shots
	MovementSpeed float64 // units per second
	Enhanced      bool
	Intelligence  float64
}

var profiles = [...]Profile{
	Easy:   {Accuracy: 0.5, ReactionTime: 1.0, MovementSpeed: 2.5, Intelligence: 1},
	Normal: {Accuracy: 0.7, ReactionTime: 0.5, MovementSpeed: 3.0, Intelligence: 1},
	Hard:   {Accuracy: 0.8, ReactionTime: 0.3, MovementSpeed: 3.5, Intelligence: 1},
	Expert: {Accuracy: 0.9, ReactionTime: 0.2, MovementSpeed: 4.0, Intelligence: 1},
	Elite:  {Accuracy: 0.95, ReactionTime: 0.1, MovementSpeed: 4.5, Enhanced: true, Intelligence: 2},
}

// Profile returns the tier's tuning. Unknown tiers get Normal.
func (d Difficulty) Profile() Profile {
	if int(d) < len(profiles) {
		return profiles[d]
	}
	return profiles[Normal]
}
