package bouquet

import "time"

// BudgetTier selects one of the fixed budget envelopes.
type BudgetTier string

const (
	TierEconomique BudgetTier = "economique"
	TierStandard   BudgetTier = "standard"
	TierPremium    BudgetTier = "premium"
)

// ParseBudgetTier validates a tier name supplied by the caller.
func ParseBudgetTier(raw string) (BudgetTier, bool) {
	switch BudgetTier(raw) {
	case TierEconomique, TierStandard, TierPremium:
		return BudgetTier(raw), true
	default:
		return "", false
	}
}

// TierEnvelope is the flower-count and price envelope for one tier. Prices
// are in minor currency units. The composition service treats the envelope
// as a soft target; the totals invariant is enforced locally.
type TierEnvelope struct {
	MinFlowerTypes int
	MaxFlowerTypes int
	MinPrice       int
	MaxPrice       int
}

// DefaultTiers returns the fixed envelopes used in production. Tests inject
// their own map through Config instead of mutating this one.
func DefaultTiers() map[BudgetTier]TierEnvelope {
	return map[BudgetTier]TierEnvelope{
		TierEconomique: {MinFlowerTypes: 2, MaxFlowerTypes: 3, MinPrice: 3000, MaxPrice: 5000},
		TierStandard:   {MinFlowerTypes: 3, MaxFlowerTypes: 4, MinPrice: 5000, MaxPrice: 8000},
		TierPremium:    {MinFlowerTypes: 4, MaxFlowerTypes: 6, MinPrice: 8000, MaxPrice: 15000},
	}
}

// Config wires runtime settings for the recommendation domain.
type Config struct {
	Model             string
	Temperature       float32
	AnalyzerPrompt    string
	ComposerPrompt    string
	MaxStemsPerFlower int
	RequestTimeout    time.Duration
	Tiers             map[BudgetTier]TierEnvelope
}
