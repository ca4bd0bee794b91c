package domain

import "fmt"

// DiscountTier maps an inclusive trip-count range to a volume discount rate.
// MaxTrips is nil on the last, unbounded tier.
type DiscountTier struct {
	MinTrips int     `json:"min_trips"`
	MaxTrips *int    `json:"max_trips"`
	Rate     float64 `json:"rate"`
}

// Contains reports whether the tier covers the given trip count.
func (t DiscountTier) Contains(trips int) bool {
	if trips < t.MinTrips {
		return false
	}
	return t.MaxTrips == nil || trips <= *t.MaxTrips
}

// Label renders the tier for display, e.g. "21-40 trips: 10%".
func (t DiscountTier) Label() string {
	if t.MaxTrips == nil {
		return fmt.Sprintf("%d+ trips: %.0f%%", t.MinTrips, t.Rate*100)
	}
	return fmt.Sprintf("%d-%d trips: %.0f%%", t.MinTrips, *t.MaxTrips, t.Rate*100)
}

// TierTable is an ordered, contiguous, exhaustive set of discount tiers
// covering every non-negative trip count. Defined once at process start and
// never mutated.
type TierTable []DiscountTier

func maxTrips(n int) *int { return &n }

// DefaultTiers is the fixed business rule for per-trip volume discounts.
var DefaultTiers = TierTable{
	{MinTrips: 0, MaxTrips: maxTrips(10), Rate: 0},
	{MinTrips: 11, MaxTrips: maxTrips(20), Rate: 0.05},
	{MinTrips: 21, MaxTrips: maxTrips(40), Rate: 0.10},
	{MinTrips: 41, MaxTrips: nil, Rate: 0.15},
}

// TierFor returns the single tier covering the given trip count. The table
// is exhaustive over [0, inf), so any non-negative count matches; a negative
// count is clamped to the first tier.
func (tt TierTable) TierFor(trips int) DiscountTier {
	for _, t := range tt {
		if t.Contains(trips) {
			return t
		}
	}
	return tt[0]
}

// DiscountAmount computes the discount on cost for the given trip count.
// Segment-level amounts are kept unrounded; only the display layer rounds.
func (tt TierTable) DiscountAmount(cost float64, trips int) float64 {
	return cost * tt.TierFor(trips).Rate
}
