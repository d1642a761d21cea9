package encounter

import (
	"github.com/cyborstrike/combatcore/internal/bot"
	"github.com/cyborstrike/combatcore/pkg/core"
)

// MissionDef is one entry of the campaign.
type MissionDef struct {
	MapName   string
	Objective string
	Anchor    core.GeoAnchor
}

// Campaign is the built-in mission sequence.
var Campaign = []MissionDef{
	{
		MapName:   "cybor_compound",
		Objective: "Eliminate all Cybor Terrorists in the compound",
		Anchor:    core.GeoAnchor{Latitude: 52.5200, Longitude: 13.4050},
	},
	{
		MapName:   "cybor_urban_warfare",
		Objective: "Secure the urban warfare zone",
		Anchor:    core.GeoAnchor{Latitude: 40.7128, Longitude: -74.0060},
	},
	{
		MapName:   "cybor_industrial_complex",
		Objective: "Infiltrate the industrial complex",
		Anchor:    core.GeoAnchor{Latitude: 51.4556, Longitude: 7.0116},
	},
	{
		MapName:   "cybor_arctic_base",
		Objective: "Assault the arctic base",
		Anchor:    core.GeoAnchor{Latitude: 78.2232, Longitude: 15.6267},
	},
	{
		MapName:   "cybor_final_assault",
		Objective: "Complete the final assault mission",
		Anchor:    core.GeoAnchor{Latitude: 35.6762, Longitude: 139.6503},
	},
}

// difficultyFor escalates bot difficulty with the mission index.
func (c *Coordinator) difficultyFor(index int) bot.Difficulty {
	switch {
	case index >= c.cfg.ExpertFrom:
		return bot.Expert
	case index >= c.cfg.HardFrom:
		return bot.Hard
	default:
		return bot.Normal
	}
}
