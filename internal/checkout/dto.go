package checkout

import (
	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/internal/orders"
)

// CheckoutInput captures optional per-vendor data attached at checkout time.
type CheckoutInput struct {
	NotesByCompany map[uuid.UUID]string
}

// Result reports what the splitter produced. Orders come back in the order
// their vendors first appeared in the cart.
type Result struct {
	Orders  []*orders.OrderDTO `json:"orders"`
	Skipped int                `json:"skipped"`
}
