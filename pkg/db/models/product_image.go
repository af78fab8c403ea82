package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is one gallery entry of a product. At most one row per
// product carries is_principal; promoting an image demotes the rest.
type ProductImage struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL         string    `gorm:"column:url;not null"`
	AltText     string    `gorm:"column:alt_text;not null;default:''"`
	IsPrincipal bool      `gorm:"column:is_principal;not null;default:false"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
