package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderMessage is one entry in the buyer/vendor thread attached to an order.
// At least one of Body and AttachmentPath is set.
type OrderMessage struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	SenderID       uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	Body           string    `gorm:"column:body;not null;default:''"`
	AttachmentPath *string   `gorm:"column:attachment_path"`
	IsRead         bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
