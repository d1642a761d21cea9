package bot

// State is the behavior state of a bot. Exactly one is active at a time.
type State uint8

const (
	StateIdle State = iota
	StatePatrolling
	StateSearching
	StateEngaging
	StateRetreating
	StateDefending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePatrolling:
		return "patrolling"
	case StateSearching:
		return "searching"
	case StateEngaging:
		return "engaging"
	case StateRetreating:
		return "retreating"
	case StateDefending:
		return "defending"
	default:
		return "unknown"
	}
}

// committed states are left only on fresh acquisition or their own timers.
func (s State) committed() bool {
	return s == StateRetreating || s == StateDefending
}

// Transition is a state change reported by the bot.
type Transition struct {
	From State
	To   State
}

type handler func(b *Bot, dt float64, opp Opponent, out *Outcome)

// handlers holds the per-state behavior, indexed by State.
var handlers = [...]handler{
	StateIdle:       (*Bot).idle,
	StatePatrolling: (*Bot).patrol,
	StateSearching:  (*Bot).search,
	StateEngaging:   (*Bot).engage,
	StateRetreating: (*Bot).retreat,
	StateDefending:  (*Bot).defend,
}
