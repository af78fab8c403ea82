package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	cartsvc "github.com/teomanager/teomanager-backend/internal/cart"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

type cartAddRequest struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
}

type cartRemoveRequest struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	ServiceID *uuid.UUID `json:"service_id,omitempty"`
}

func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartAddRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Add(r.Context(), middleware.UserIDFromContext(r.Context()), cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			ServiceID: payload.ServiceID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload cartRemoveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Remove(r.Context(), middleware.UserIDFromContext(r.Context()), cartsvc.RemoveItemInput{
			ProductID: payload.ProductID,
			ServiceID: payload.ServiceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
