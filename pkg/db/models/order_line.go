package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine captures the snapshot of one cart entry at checkout time.
// Exactly one of ProductID or ServiceID is set at insert; deleting the
// listing later nulls the reference while Name and UnitPrice keep the
// snapshot.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	ServiceID *uuid.UUID      `gorm:"column:service_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
