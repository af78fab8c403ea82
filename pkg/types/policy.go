package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PolicyItem is one bullet of a storefront policy block.
type PolicyItem struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

// Policy is a JSONB column holding an optional per-listing override of a
// policy block. When Custom is false the platform default applies and Items
// is empty.
type Policy struct {
	Custom bool         `json:"custom"`
	Items  []PolicyItem `json:"items,omitempty"`
}

// Resolve returns the effective items: the override when set, otherwise the
// provided defaults.
func (p Policy) Resolve(defaults []PolicyItem) []PolicyItem {
	if p.Custom && len(p.Items) > 0 {
		return p.Items
	}
	return defaults
}

// Value marshals the policy into JSON for Postgres.
func (p Policy) Value() (driver.Value, error) {
	buf, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the policy.
func (p *Policy) Scan(value interface{}) error {
	if value == nil {
		*p = Policy{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			*p = Policy{}
			return nil
		}
		return json.Unmarshal(v, p)
	case string:
		if v == "" {
			*p = Policy{}
			return nil
		}
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("policy: unsupported scan type %T", value)
	}
}

// Default policy blocks shown when a listing carries no override.
var (
	DefaultShippingPolicy = []PolicyItem{
		{Icon: "fas fa-truck", Text: "Free shipping on orders over $500"},
		{Icon: "fas fa-clock", Text: "Delivery within 2-5 business days"},
		{Icon: "fas fa-shield-alt", Text: "Insured shipping"},
		{Icon: "fas fa-map-marker-alt", Text: "Available across the region"},
	}

	DefaultReturnsPolicy = []PolicyItem{
		{Icon: "fas fa-undo", Text: "30 days to request a return"},
		{Icon: "fas fa-money-bill-wave", Text: "Full refund"},
		{Icon: "fas fa-box", Text: "Item in original condition"},
	}

	DefaultBookingPolicy = []PolicyItem{
		{Icon: "fas fa-calendar-alt", Text: "Book at least 24 hours ahead"},
		{Icon: "fas fa-clock", Text: "Flexible hours Monday through Saturday"},
		{Icon: "fas fa-map-marker-alt", Text: "On-site service available"},
		{Icon: "fas fa-phone", Text: "Confirmation by phone or WhatsApp"},
	}

	DefaultCancellationPolicy = []PolicyItem{
		{Icon: "fas fa-undo", Text: "Free cancellation up to 12 hours before"},
		{Icon: "fas fa-money-bill-wave", Text: "Pay when the service is done"},
		{Icon: "fas fa-shield-alt", Text: "Satisfaction guaranteed"},
		{Icon: "fas fa-tools", Text: "Materials and tools included"},
	}
)
