package subscriptions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Unlimited marks a quota with no ceiling.
const Unlimited = -1

// Plan describes one subscription tier: its price, billing period and the
// resource quotas it grants.
type Plan struct {
	Tier            enums.PlanTier  `json:"tier"`
	Price           decimal.Decimal `json:"price"`
	Duration        time.Duration   `json:"-"`
	DurationDays    int             `json:"duration_days"`
	MaxProducts     int             `json:"max_products"`
	MaxServices     int             `json:"max_services"`
	MaxLandingPages int             `json:"max_landing_pages"`
}

// Limit returns the quota for the given resource kind. Unknown kinds return
// zero so a bad caller never bypasses gating.
func (p Plan) Limit(kind enums.ResourceKind) int {
	switch kind {
	case enums.ResourceKindProduct:
		return p.MaxProducts
	case enums.ResourceKindService:
		return p.MaxServices
	case enums.ResourceKindLandingPage:
		return p.MaxLandingPages
	default:
		return 0
	}
}

// Allows reports whether the plan admits one more resource of the kind given
// the current count.
func (p Plan) Allows(kind enums.ResourceKind, current int64) bool {
	limit := p.Limit(kind)
	if limit == Unlimited {
		return true
	}
	return current < int64(limit)
}

var plans = map[enums.PlanTier]Plan{
	enums.PlanTierBasic: {
		Tier:            enums.PlanTierBasic,
		Price:           decimal.Zero,
		Duration:        30 * 24 * time.Hour,
		DurationDays:    30,
		MaxProducts:     10,
		MaxServices:     5,
		MaxLandingPages: 1,
	},
	enums.PlanTierPremium: {
		Tier:            enums.PlanTierPremium,
		Price:           decimal.RequireFromString("29.99"),
		Duration:        30 * 24 * time.Hour,
		DurationDays:    30,
		MaxProducts:     100,
		MaxServices:     50,
		MaxLandingPages: 5,
	},
	enums.PlanTierEnterprise: {
		Tier:            enums.PlanTierEnterprise,
		Price:           decimal.RequireFromString("99.99"),
		Duration:        30 * 24 * time.Hour,
		DurationDays:    30,
		MaxProducts:     Unlimited,
		MaxServices:     Unlimited,
		MaxLandingPages: Unlimited,
	},
}

// PlanFor returns the static definition of a tier.
func PlanFor(tier enums.PlanTier) (Plan, bool) {
	plan, ok := plans[tier]
	return plan, ok
}

// AllPlans lists the tiers in ascending price order.
func AllPlans() []Plan {
	return []Plan{
		plans[enums.PlanTierBasic],
		plans[enums.PlanTierPremium],
		plans[enums.PlanTierEnterprise],
	}
}

// DefaultPlan is the tier companies fall back to without an active
// subscription.
func DefaultPlan() Plan {
	return plans[enums.PlanTierBasic]
}
