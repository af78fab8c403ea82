package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

// BrowseFilters describe the filter knobs of the public browse endpoints.
type BrowseFilters struct {
	Category  string           `json:"category,omitempty"`
	CompanyID *uuid.UUID       `json:"company_id,omitempty"`
	PriceMin  *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax  *decimal.Decimal `json:"price_max,omitempty"`
	Query     string           `json:"q,omitempty"`
}

// BrowseInput captures the inputs needed to paginate/filter public listings.
type BrowseInput struct {
	Filters    BrowseFilters
	Pagination pagination.Params
}

// ProductListResult is one page of products plus the cursor to the next.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ServiceListResult is one page of services plus the cursor to the next.
type ServiceListResult struct {
	Services   []ServiceDTO `json:"services"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
