package rules

// NightTieBreak decides the victim when several wolves picked different
// targets in the same night.
type NightTieBreak string

const (
	// TieBreakFirstActor takes the target of the wolf who acted first.
	TieBreakFirstActor NightTieBreak = "first_actor"
	// TieBreakMajority takes the most-picked target; equal counts fall back
	// to the earliest acting wolf among the leaders.
	TieBreakMajority NightTieBreak = "majority"
)

func ValidNightTieBreak(v string) bool {
	switch NightTieBreak(v) {
	case TieBreakFirstActor, TieBreakMajority:
		return true
	}
	return false
}

// Ruleset bundles the policy knobs a session is played under. Tied day votes
// always lynch nobody; that one is not negotiable in the base rules.
type Ruleset struct {
	MinParticipants int
	MaxParticipants int
	NightTieBreak   NightTieBreak
}

const (
	DefaultMinParticipants = 5
	DefaultMaxParticipants = 12
)

func DefaultRuleset() Ruleset {
	return Ruleset{
		MinParticipants: DefaultMinParticipants,
		MaxParticipants: DefaultMaxParticipants,
		NightTieBreak:   TieBreakFirstActor,
	}
}

// WolfCount returns how many wolf roles to deal for n players. One wolf up to
// twelve players, one more for every further six.
func (r Ruleset) WolfCount(n int) int {
	if n <= 12 {
		return 1
	}
	return 1 + (n-12+5)/6
}
