package controllers

import (
	"net/http"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	subscriptionssvc "github.com/teomanager/teomanager-backend/internal/subscriptions"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

// SubscriptionPlans lists the static plan catalog.
func SubscriptionPlans(svc subscriptionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Plans(r.Context()))
	}
}

// SubscriptionCurrent returns the company's effective plan and, when one
// exists, the active subscription row.
func SubscriptionCurrent(svc subscriptionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, sub, err := svc.CurrentPlan(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"plan":         plan,
			"subscription": sub,
		})
	}
}

type subscribeRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// SubscriptionSubscribe activates a paid tier for the company.
func SubscriptionSubscribe(svc subscriptionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := enums.ParsePlanTier(payload.Plan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown plan"))
			return
		}

		sub, err := svc.Subscribe(r.Context(), middleware.UserIDFromContext(r.Context()), tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sub)
	}
}

// SubscriptionCancel drops the company back to the basic tier.
func SubscriptionCancel(svc subscriptionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Cancel(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

// SubscriptionHistory lists the company's past subscriptions.
func SubscriptionHistory(svc subscriptionssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := svc.History(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
