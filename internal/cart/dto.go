package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart entry. Exactly one of ProductID or ServiceID is set; the
// company and price fields are refreshed from the catalog on every read.
type Item struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID *uuid.UUID      `json:"service_id,omitempty"`
	CompanyID uuid.UUID       `json:"company_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is the line total of the entry.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Key identifies the listing backing the entry.
func (i Item) Key() string {
	if i.ProductID != nil {
		return "product:" + i.ProductID.String()
	}
	if i.ServiceID != nil {
		return "service:" + i.ServiceID.String()
	}
	return ""
}

// Cart is the serialized session cart stored in redis.
type Cart struct {
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total sums all line subtotals.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// AddItemInput identifies a listing and quantity to put in the cart.
type AddItemInput struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
	Quantity  int        `json:"quantity"`
}

// RemoveItemInput identifies the entry to drop.
type RemoveItemInput struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
}

// CartDTO is the outward cart representation.
type CartDTO struct {
	Items     []ItemDTO       `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ItemDTO is the outward representation of one entry.
type ItemDTO struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID *uuid.UUID      `json:"service_id,omitempty"`
	CompanyID uuid.UUID       `json:"company_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewCartDTO maps the stored cart to its response shape.
func NewCartDTO(cart Cart) *CartDTO {
	items := make([]ItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, ItemDTO{
			ProductID: item.ProductID,
			ServiceID: item.ServiceID,
			CompanyID: item.CompanyID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return &CartDTO{
		Items:     items,
		Total:     cart.Total(),
		UpdatedAt: cart.UpdatedAt,
	}
}
