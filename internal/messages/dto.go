package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
)

// PostInput carries one new thread entry.
type PostInput struct {
	OrderID        uuid.UUID
	SenderID       uuid.UUID
	Body           string
	AttachmentPath *string
}

// MessageDTO is the API shape of one thread entry.
type MessageDTO struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Body           string    `json:"body"`
	AttachmentPath *string   `json:"attachment_path,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewMessageDTO maps a persisted message into its API shape.
func NewMessageDTO(msg *models.OrderMessage) *MessageDTO {
	return &MessageDTO{
		ID:             msg.ID,
		OrderID:        msg.OrderID,
		SenderID:       msg.SenderID,
		Body:           msg.Body,
		AttachmentPath: msg.AttachmentPath,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
	}
}
