package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Subscription is one billing period of a company plan. The table is
// append-only: renewals insert a fresh active row and the sweep marks stale
// rows expired.
type Subscription struct {
	ID             uuid.UUID                `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID                `gorm:"column:company_id;type:uuid;not null;index"`
	Plan           enums.PlanTier           `gorm:"column:plan;type:plan_tier;not null"`
	Status         enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	Price          decimal.Decimal          `gorm:"column:price;type:numeric(12,2);not null"`
	StartsAt       time.Time                `gorm:"column:starts_at;not null"`
	ExpiresAt      time.Time                `gorm:"column:expires_at;not null"`
	CancelledAt    *time.Time               `gorm:"column:cancelled_at"`
	ReminderSentAt *time.Time               `gorm:"column:reminder_sent_at"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
