package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

// Repository persists orders and their lines.
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

// Create inserts the order together with its lines.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus applies the given column updates to one order.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// RecomputeTotal rewrites the order total from the sum of its lines. The
// statement is idempotent so the splitter can call it after every insert
// batch.
func (r *Repository) RecomputeTotal(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total", gorm.Expr(
			"(SELECT COALESCE(SUM(subtotal), 0) FROM order_lines WHERE order_id = ?)", orderID,
		)).Error
}

// ListForBuyer pages through a consumer's orders, newest first.
func (r *Repository) ListForBuyer(ctx context.Context, buyerID uuid.UUID, input ListInput) ([]models.Order, string, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, input)
}

// ListForCompany pages through the orders a vendor has received.
func (r *Repository) ListForCompany(ctx context.Context, companyID uuid.UUID, input ListInput) ([]models.Order, string, error) {
	return r.list(ctx, "company_id = ?", companyID, input)
}

func (r *Repository) list(ctx context.Context, ownerClause string, ownerID uuid.UUID, input ListInput) ([]models.Order, string, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where(ownerClause, ownerID)
	if input.Status != nil {
		qb = qb.Where("status = ?", *input.Status)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// Recent returns the newest orders for one side of the marketplace, used by
// the dashboard layer.
func (r *Repository) Recent(ctx context.Context, ownerColumn string, ownerID uuid.UUID, limit int) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where(ownerColumn+" = ?", ownerID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

type statsRow struct {
	Status enums.OrderStatus
	N      int64
	Amount decimal.Decimal
}

// StatsForBuyer aggregates a consumer's orders by status.
func (r *Repository) StatsForBuyer(ctx context.Context, buyerID uuid.UUID) (*Stats, error) {
	return r.stats(ctx, "buyer_id = ?", buyerID)
}

// StatsForCompany aggregates the orders a vendor has received by status.
func (r *Repository) StatsForCompany(ctx context.Context, companyID uuid.UUID) (*Stats, error) {
	return r.stats(ctx, "company_id = ?", companyID)
}

// GlobalStats aggregates every order on the platform.
func (r *Repository) GlobalStats(ctx context.Context) (*Stats, error) {
	return r.stats(ctx, "", uuid.Nil)
}

func (r *Repository) stats(ctx context.Context, ownerClause string, ownerID uuid.UUID) (*Stats, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS n, COALESCE(SUM(total), 0) AS amount").
		Group("status")
	if ownerClause != "" {
		qb = qb.Where(ownerClause, ownerID)
	}

	var rows []statsRow
	if err := qb.Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := &Stats{
		ByStatus:     map[enums.OrderStatus]int64{},
		Revenue:      decimal.Zero,
		AverageOrder: decimal.Zero,
	}
	var completed int64
	for _, row := range rows {
		stats.ByStatus[row.Status] = row.N
		stats.TotalOrders += row.N
		if row.Status == enums.OrderStatusCompleted {
			stats.Revenue = row.Amount
			completed = row.N
		}
	}
	if completed > 0 {
		stats.AverageOrder = stats.Revenue.Div(decimal.NewFromInt(completed)).Round(2)
	}
	return stats, nil
}
