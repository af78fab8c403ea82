package enums

import "fmt"

// EmailKind maps to the email_kind enum in Postgres.
type EmailKind string

const (
	EmailKindWelcome              EmailKind = "welcome"
	EmailKindOrderConfirmation    EmailKind = "order_confirmation"
	EmailKindOrderStatusChanged   EmailKind = "order_status_changed"
	EmailKindOrderMessage         EmailKind = "order_message"
	EmailKindPasswordReset        EmailKind = "password_reset"
	EmailKindLimitWarning         EmailKind = "limit_warning"
	EmailKindSubscriptionReceipt  EmailKind = "subscription_receipt"
	EmailKindSubscriptionReminder EmailKind = "subscription_reminder"
	EmailKindSubscriptionExpired  EmailKind = "subscription_expired"
)

var validEmailKinds = []EmailKind{
	EmailKindWelcome,
	EmailKindOrderConfirmation,
	EmailKindOrderStatusChanged,
	EmailKindOrderMessage,
	EmailKindPasswordReset,
	EmailKindLimitWarning,
	EmailKindSubscriptionReceipt,
	EmailKindSubscriptionReminder,
	EmailKindSubscriptionExpired,
}

// String implements fmt.Stringer.
func (e EmailKind) String() string {
	return string(e)
}

// IsValid reports whether the value is known.
func (e EmailKind) IsValid() bool {
	for _, candidate := range validEmailKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEmailKind converts raw input into an EmailKind.
func ParseEmailKind(value string) (EmailKind, error) {
	for _, candidate := range validEmailKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid email kind %q", value)
}

// OutboxStatus maps to the outbox_status enum in Postgres.
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

var validOutboxStatuses = []OutboxStatus{
	OutboxStatusPending,
	OutboxStatusSent,
	OutboxStatusFailed,
}

// IsValid reports whether the value is known.
func (o OutboxStatus) IsValid() bool {
	for _, candidate := range validOutboxStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// DLQErrorReason explains why an outbox row was parked.
type DLQErrorReason string

const (
	DLQReasonMaxAttemptsExceeded DLQErrorReason = "max_attempts_exceeded"
	DLQReasonInvalidPayload      DLQErrorReason = "invalid_payload"
)
