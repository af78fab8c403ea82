package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/teomanager/teomanager-backend/pkg/types"
)

// Profile extends a user with contact details. CompanyName is only populated
// for company accounts; switching the account to consumer clears it.
type Profile struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	CompanyName *string      `gorm:"column:company_name"`
	Description *string      `gorm:"column:description"`
	Phone       *string      `gorm:"column:phone"`
	Address     *string      `gorm:"column:address"`
	City        *string      `gorm:"column:city"`
	Country     *string      `gorm:"column:country"`
	LogoURL     *string      `gorm:"column:logo_url"`
	Social      types.Social `gorm:"column:social;type:social_t"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
