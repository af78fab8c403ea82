package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/types"
)

// Product represents a physical listing owned by a company account.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index:idx_products_company_active"`
	Name           string          `gorm:"column:name;not null"`
	Description    string          `gorm:"column:description;not null;default:''"`
	Category       string          `gorm:"column:category;not null;index"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock          int             `gorm:"column:stock;not null;default:0"`
	IsActive       bool            `gorm:"column:is_active;not null;default:true;index:idx_products_company_active"`
	ShippingPolicy types.Policy    `gorm:"column:shipping_policy;type:jsonb"`
	ReturnsPolicy  types.Policy    `gorm:"column:returns_policy;type:jsonb"`
	Images         []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
