package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/types"
)

// ServiceOffering represents a bookable service owned by a company account.
// Services carry no stock; availability is handled out of band.
type ServiceOffering struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID          uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index:idx_services_company_active"`
	Name               string          `gorm:"column:name;not null"`
	Description        string          `gorm:"column:description;not null;default:''"`
	Category           string          `gorm:"column:category;not null;index"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Duration           string          `gorm:"column:duration;not null;default:''"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true;index:idx_services_company_active"`
	BookingPolicy      types.Policy    `gorm:"column:booking_policy;type:jsonb"`
	CancellationPolicy types.Policy    `gorm:"column:cancellation_policy;type:jsonb"`
	Images             []ServiceImage  `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ServiceOffering) TableName() string { return "services" }
