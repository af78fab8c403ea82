package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceImage is one gallery entry of a service, same principal rule as
// product images.
type ServiceImage struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ServiceID   uuid.UUID `gorm:"column:service_id;type:uuid;not null;index"`
	URL         string    `gorm:"column:url;not null"`
	AltText     string    `gorm:"column:alt_text;not null;default:''"`
	IsPrincipal bool      `gorm:"column:is_principal;not null;default:false"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
