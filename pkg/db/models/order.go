package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Order is the per-vendor slice of a checkout. One checkout fan-outs into
// one order per company represented in the cart.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerID     uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	CompanyID   uuid.UUID         `gorm:"column:company_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Total       decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Note        *string           `gorm:"column:note"`
	Lines       []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
	CancelledAt *time.Time        `gorm:"column:cancelled_at"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
