package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// EmailOutboxDLQ captures terminal delivery failures for auditing and manual
// replay.
type EmailOutboxDLQ struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OutboxID     uuid.UUID            `gorm:"column:outbox_id;type:uuid;not null"`
	Kind         enums.EmailKind      `gorm:"column:kind;type:email_kind;not null"`
	Recipient    string               `gorm:"column:recipient;not null"`
	Payload      json.RawMessage      `gorm:"column:payload;type:jsonb;not null"`
	ErrorReason  enums.DLQErrorReason `gorm:"column:error_reason;not null"`
	ErrorMessage *string              `gorm:"column:error_message"`
	AttemptCount int                  `gorm:"column:attempt_count;not null;default:0"`
	FailedAt     time.Time            `gorm:"column:failed_at;autoCreateTime"`
}

func (EmailOutboxDLQ) TableName() string { return "email_outbox_dlq" }
