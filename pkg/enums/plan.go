package enums

import "fmt"

// PlanTier names the subscription levels a company can hold.
type PlanTier string

const (
	PlanTierBasic      PlanTier = "basic"
	PlanTierPremium    PlanTier = "premium"
	PlanTierEnterprise PlanTier = "enterprise"
)

var validPlanTiers = []PlanTier{
	PlanTierBasic,
	PlanTierPremium,
	PlanTierEnterprise,
}

// String implements fmt.Stringer.
func (p PlanTier) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PlanTier) IsValid() bool {
	for _, candidate := range validPlanTiers {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanTier converts raw input into a PlanTier.
func ParsePlanTier(value string) (PlanTier, error) {
	for _, candidate := range validPlanTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan tier %q", value)
}
