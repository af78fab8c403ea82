package enums

import "fmt"

// ResourceKind names the plan-quota-gated resources a company owns.
type ResourceKind string

const (
	ResourceKindProduct     ResourceKind = "product"
	ResourceKindService     ResourceKind = "service"
	ResourceKindLandingPage ResourceKind = "landing_page"
)

var validResourceKinds = []ResourceKind{
	ResourceKindProduct,
	ResourceKindService,
	ResourceKindLandingPage,
}

// String implements fmt.Stringer.
func (r ResourceKind) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r ResourceKind) IsValid() bool {
	for _, candidate := range validResourceKinds {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseResourceKind converts raw input into a ResourceKind.
func ParseResourceKind(value string) (ResourceKind, error) {
	for _, candidate := range validResourceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid resource kind %q", value)
}
