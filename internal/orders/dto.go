package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

// OrderLineDTO is the API shape of a single order line.
type OrderLineDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	ServiceID *uuid.UUID      `json:"service_id,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderDTO is the API shape of one vendor order.
type OrderDTO struct {
	ID          uuid.UUID       `json:"id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	Status      string          `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Note        *string         `json:"note,omitempty"`
	Lines       []OrderLineDTO  `json:"lines"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewOrderDTO maps a persisted order (with lines) into its API shape.
func NewOrderDTO(order *models.Order) *OrderDTO {
	lines := make([]OrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			ServiceID: line.ServiceID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
	}
	return &OrderDTO{
		ID:          order.ID,
		BuyerID:     order.BuyerID,
		CompanyID:   order.CompanyID,
		Status:      order.Status.String(),
		Total:       order.Total,
		Note:        order.Note,
		Lines:       lines,
		CompletedAt: order.CompletedAt,
		CancelledAt: order.CancelledAt,
		CreatedAt:   order.CreatedAt,
	}
}

// ListInput filters one side of the order listings.
type ListInput struct {
	Status     *enums.OrderStatus
	Pagination pagination.Params
}

// ListResult is one page of orders plus the cursor for the next one.
type ListResult struct {
	Orders     []*OrderDTO `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// UpdateStatusInput carries a vendor's status change request.
type UpdateStatusInput struct {
	OrderID    uuid.UUID
	ActorID    uuid.UUID
	NextStatus enums.OrderStatus
}

// Stats aggregates one account's orders for dashboard rendering.
type Stats struct {
	ByStatus     map[enums.OrderStatus]int64 `json:"by_status"`
	TotalOrders  int64                       `json:"total_orders"`
	Revenue      decimal.Decimal             `json:"revenue"`
	AverageOrder decimal.Decimal             `json:"average_order"`
}
