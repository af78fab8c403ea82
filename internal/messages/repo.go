package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
)

// Repository persists order message threads.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires the repository to a gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts one thread entry.
func (r *Repository) Create(ctx context.Context, msg *models.OrderMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListForOrder returns the full thread oldest first.
func (r *Repository) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderMessage, error) {
	var rows []models.OrderMessage
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// MarkReadForViewer flags every counterpart message in the thread as read.
func (r *Repository) MarkReadForViewer(ctx context.Context, orderID, viewerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderMessage{}).
		Where("order_id = ? AND sender_id <> ? AND is_read = ?", orderID, viewerID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

// UnreadCount counts unread counterpart messages across every order the
// account is a party to.
func (r *Repository) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderMessage{}).
		Joins("JOIN orders ON orders.id = order_messages.order_id").
		Where("(orders.buyer_id = ? OR orders.company_id = ?)", accountID, accountID).
		Where("order_messages.sender_id <> ? AND order_messages.is_read = ?", accountID, false).
		Count(&count).Error
	return count, err
}
