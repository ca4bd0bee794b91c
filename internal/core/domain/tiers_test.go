package domain_test

import (
	"testing"

	"github.com/yichenzhou/farepass/internal/core/domain"
)

func TestDefaultTiers_Boundaries(t *testing.T) {
	cases := []struct {
		trips int
		rate  float64
	}{
		{0, 0},
		{5, 0},
		{10, 0},
		{11, 0.05},
		{20, 0.05},
		{21, 0.10},
		{40, 0.10},
		{41, 0.15},
		{100, 0.15},
		{1000, 0.15},
	}
	for _, tc := range cases {
		tier := domain.DefaultTiers.TierFor(tc.trips)
		if tier.Rate != tc.rate {
			t.Errorf("trips=%d: expected rate %v, got %v", tc.trips, tc.rate, tier.Rate)
		}
	}
}

// Every non-negative trip count must land in exactly one tier.
func TestDefaultTiers_Exhaustive(t *testing.T) {
	for n := 0; n <= 500; n++ {
		matches := 0
		for _, tier := range domain.DefaultTiers {
			if tier.Contains(n) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("trips=%d matched %d tiers, want exactly 1", n, matches)
		}
	}
}

func TestDiscountAmount(t *testing.T) {
	if got := domain.DefaultTiers.DiscountAmount(1330, 38); got != 133 {
		t.Errorf("expected discount 133, got %v", got)
	}
	if got := domain.DefaultTiers.DiscountAmount(70, 2); got != 0 {
		t.Errorf("expected no discount, got %v", got)
	}
}

func TestTierLabel(t *testing.T) {
	open := domain.DefaultTiers[len(domain.DefaultTiers)-1]
	if got := open.Label(); got != "41+ trips: 15%" {
		t.Errorf("unexpected open-ended label %q", got)
	}
	if got := domain.DefaultTiers[1].Label(); got != "11-20 trips: 5%" {
		t.Errorf("unexpected label %q", got)
	}
}

func TestTierFor_NegativeClampsToFirstTier(t *testing.T) {
	if tier := domain.DefaultTiers.TierFor(-3); tier.Rate != 0 || tier.MinTrips != 0 {
		t.Errorf("negative trips should hit the first tier, got %+v", tier)
	}
}
