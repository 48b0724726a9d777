package models

// BadgeTier is the highest achievement reached by a user
type BadgeTier int

const (
	BadgeNone BadgeTier = iota
	BadgeAdventurer
	BadgeExplorer
	BadgeUltimateTraveler
)

// Badge thresholds on a user's total adventure entries
const (
	AdventurerThreshold       = 10
	ExplorerThreshold         = 20
	UltimateTravelerThreshold = 50
)

func (t BadgeTier) String() string {
	switch t {
	case BadgeAdventurer:
		return "Adventurer"
	case BadgeExplorer:
		return "Explorer"
	case BadgeUltimateTraveler:
		return "Ultimate Traveler"
	default:
		return "None"
	}
}

// MarshalText encodes the tier name
func (t BadgeTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Unlocked lists every badge earned on the way to t, lowest first
func (t BadgeTier) Unlocked() []BadgeTier {
	var out []BadgeTier
	for b := BadgeAdventurer; b <= t && b <= BadgeUltimateTraveler; b++ {
		out = append(out, b)
	}
	return out
}
