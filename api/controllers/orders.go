package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	orderssvc "github.com/teomanager/teomanager-backend/internal/orders"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
	"github.com/teomanager/teomanager-backend/pkg/pagination"
)

func orderListInputFromQuery(r *http.Request) (orderssvc.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return orderssvc.ListInput{}, err
	}

	input := orderssvc.ListInput{
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		},
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orderssvc.ListInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status")
		}
		input.Status = &status
	}
	return input, nil
}

// OrdersList pages through the caller's orders. Companies see the orders
// placed against them, everyone else sees the orders they placed.
func OrdersList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := orderListInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		var result *orderssvc.ListResult
		if middleware.AccountTypeFromContext(r.Context()) == enums.AccountTypeCompany {
			result, err = svc.ListForCompany(r.Context(), actorID, input)
		} else {
			result, err = svc.ListForBuyer(r.Context(), actorID, input)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func OrdersGet(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrdersUpdateStatus lets the vendor advance an order through its
// lifecycle. Illegal transitions come back as state conflicts.
func OrdersUpdateStatus(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderssvc.UpdateStatusInput{
			OrderID:    orderID,
			ActorID:    middleware.UserIDFromContext(r.Context()),
			NextStatus: status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersStats(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := middleware.UserIDFromContext(r.Context())
		var stats *orderssvc.Stats
		var err error
		if middleware.AccountTypeFromContext(r.Context()) == enums.AccountTypeCompany {
			stats, err = svc.StatsForCompany(r.Context(), actorID)
		} else {
			stats, err = svc.StatsForBuyer(r.Context(), actorID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
