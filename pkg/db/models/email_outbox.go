package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// EmailOutbox is one transactional email awaiting delivery. Rows are written
// inside the business transaction that triggered them and drained by the
// worker, so a crash never loses a send.
type EmailOutbox struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Kind          enums.EmailKind    `gorm:"column:kind;type:email_kind;not null"`
	Recipient     string             `gorm:"column:recipient;not null"`
	Subject       string             `gorm:"column:subject;not null"`
	Payload       json.RawMessage    `gorm:"column:payload;type:jsonb;not null"`
	Status        enums.OutboxStatus `gorm:"column:status;type:outbox_status;not null;default:'pending'"`
	AttemptCount  int                `gorm:"column:attempt_count;not null;default:0"`
	NextAttemptAt time.Time          `gorm:"column:next_attempt_at;not null"`
	LastError     *string            `gorm:"column:last_error"`
	SentAt        *time.Time         `gorm:"column:sent_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (EmailOutbox) TableName() string { return "email_outbox" }
