package subscriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
)

// Repository exposes subscription persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a subscriptions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new subscription row.
func (r *Repository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// FindActive returns the company's current active subscription, preferring
// the most recent when stale rows overlap.
func (r *Repository) FindActive(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ? AND expires_at > ?", companyID, enums.SubscriptionStatusActive, time.Now()).
		Order("starts_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// History lists all subscription rows of a company, newest first.
func (r *Repository) History(ctx context.Context, companyID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("starts_at DESC").
		Find(&subs).Error
	return subs, err
}

// ExpireActives marks every active row of the company as expired. Called
// before inserting the replacement so at most one row stays active.
func (r *Repository) ExpireActives(ctx context.Context, companyID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("company_id = ? AND status = ?", companyID, enums.SubscriptionStatusActive).
		Update("status", enums.SubscriptionStatusExpired).Error
}

// Cancel marks the company's active subscription cancelled.
func (r *Repository) Cancel(ctx context.Context, companyID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("company_id = ? AND status = ?", companyID, enums.SubscriptionStatusActive).
		Updates(map[string]any{
			"status":       enums.SubscriptionStatusCancelled,
			"cancelled_at": at,
		})
	return result.RowsAffected, result.Error
}

// FindDueForExpiry returns active rows whose period has lapsed.
func (r *Repository) FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", enums.SubscriptionStatusActive, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// FindDueForReminder returns active rows expiring inside the window that
// have not been reminded yet.
func (r *Repository) FindDueForReminder(ctx context.Context, now, until time.Time, limit int) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at > ? AND expires_at <= ? AND reminder_sent_at IS NULL",
			enums.SubscriptionStatusActive, now, until).
		Order("expires_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// MarkReminded stamps the rows so the next sweep skips them.
func (r *Repository) MarkReminded(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id IN ?", ids).
		Update("reminder_sent_at", at).Error
}

// MarkExpired flips the given rows to expired.
func (r *Repository) MarkExpired(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id IN ?", ids).
		Update("status", enums.SubscriptionStatusExpired).Error
}
