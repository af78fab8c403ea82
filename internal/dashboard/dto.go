package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/internal/orders"
)

// UserTotals summarizes the account table for administrators.
type UserTotals struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Companies int64 `json:"companies"`
	Admins    int64 `json:"admins"`
}

// ListingAggregates summarizes one catalog table.
type ListingAggregates struct {
	Total    int64           `json:"total"`
	Active   int64           `json:"active"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

// AdminMetrics is the platform-wide dashboard snapshot.
type AdminMetrics struct {
	Users       UserTotals        `json:"users"`
	Products    ListingAggregates `json:"products"`
	Services    ListingAggregates `json:"services"`
	Orders      orders.Stats      `json:"orders"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// CompanyDashboard is one vendor's dashboard snapshot.
type CompanyDashboard struct {
	Products    ListingAggregates  `json:"products"`
	Services    ListingAggregates  `json:"services"`
	Orders      orders.Stats       `json:"orders"`
	Recent      []*orders.OrderDTO `json:"recent_orders"`
	GeneratedAt time.Time          `json:"generated_at"`
}
