package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Repository persists email outbox rows. Inserts always happen inside the
// business transaction that triggered the email.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(tx *gorm.DB, row models.EmailOutbox) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&row).Error
}

// FetchDue returns pending rows whose next attempt is not in the future,
// oldest first.
func (r *Repository) FetchDue(ctx context.Context, now time.Time, limit int) ([]models.EmailOutbox, error) {
	var rows []models.EmailOutbox
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", enums.OutboxStatusPending, now).
		Order("next_attempt_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  enums.OutboxStatusSent,
			"sent_at": at,
		}).Error
}

// MarkRetry records a failed attempt and reschedules the row.
func (r *Repository) MarkRetry(ctx context.Context, id uuid.UUID, nextAttempt time.Time, sendErr error) error {
	updates := map[string]any{
		"attempt_count":   gorm.Expr("attempt_count + 1"),
		"next_attempt_at": nextAttempt,
	}
	if sendErr != nil {
		updates["last_error"] = sendErr.Error()
	}
	return r.db.WithContext(ctx).Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkFailed flips the row to its terminal failed state. The caller parks the
// matching DLQ entry inside the same transaction.
func (r *Repository) MarkFailed(tx *gorm.DB, id uuid.UUID, sendErr error) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	updates := map[string]any{
		"status":        enums.OutboxStatusFailed,
		"attempt_count": gorm.Expr("attempt_count + 1"),
	}
	if sendErr != nil {
		updates["last_error"] = sendErr.Error()
	}
	return tx.Model(&models.EmailOutbox{}).
		Where("id = ?", id).
		Updates(updates).Error
}
