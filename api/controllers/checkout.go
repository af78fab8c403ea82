package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	cartsvc "github.com/teomanager/teomanager-backend/internal/cart"
	checkoutsvc "github.com/teomanager/teomanager-backend/internal/checkout"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

type checkoutRequest struct {
	NotesByCompany map[uuid.UUID]string `json:"notes_by_company,omitempty"`
}

// Checkout splits the session cart into one order per vendor. The cart is
// cleared only after the orders commit, so a failed checkout leaves it
// intact for retry.
func Checkout(svc checkoutsvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buyerID := middleware.UserIDFromContext(r.Context())
		result, err := svc.CreateOrdersFromCart(r.Context(), buyerID, checkoutsvc.CheckoutInput{
			NotesByCompany: payload.NotesByCompany,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := carts.Clear(r.Context(), buyerID); err != nil && logg != nil {
			logg.Warn(r.Context(), "checkout.cart_clear_failed")
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
