package subscription

import "fmt"

// Tier is the subscription level.
type Tier string

const (
	TierBasic Tier = "basic"
	TierPaid  Tier = "paid"
)

// Tiers lists every tier in display order.
func Tiers() []Tier {
	return []Tier{TierBasic, TierPaid}
}

// ParseTier rejects anything outside the two-valued model so an extended
// enum cannot slip past the persistence boundary unnoticed.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierBasic:
		return TierBasic, nil
	case TierPaid:
		return TierPaid, nil
	default:
		return "", fmt.Errorf("unknown subscription tier %q", s)
	}
}

// DisplayName returns the user-facing tier name.
func (t Tier) DisplayName() string {
	switch t {
	case TierPaid:
		return "Premium"
	default:
		return "Basic"
	}
}

// Features returns the ordered feature list shown on the tier card.
func (t Tier) Features() []string {
	switch t {
	case TierPaid:
		return []string{
			"Everything in Basic",
			"Full PPG waveform history",
			"Grinding and clenching trends",
			"Data export",
			"Priority support",
		}
	default:
		return []string{
			"Live sensor readings",
			"Battery and firmware status",
			"Daily wear summary",
		}
	}
}
