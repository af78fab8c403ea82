package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// User represents the canonical account entity. Company and consumer accounts
// share the table; the account type decides which surfaces they can reach.
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Email        string            `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	FirstName    string            `gorm:"column:first_name;not null"`
	LastName     string            `gorm:"column:last_name;not null"`
	AccountType  enums.AccountType `gorm:"column:account_type;type:account_type;not null;default:'consumer'"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	Profile      *Profile          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
