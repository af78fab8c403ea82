package controllers

import (
	"net/http"

	"github.com/teomanager/teomanager-backend/api/middleware"
	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/api/validators"
	dashboardsvc "github.com/teomanager/teomanager-backend/internal/dashboard"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

// DashboardAdmin serves platform-wide metrics. Pass ?refresh=true to skip
// the cached snapshot.
func DashboardAdmin(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force := validators.ParseQueryBool(r, "refresh")
		metrics, err := svc.AdminMetrics(r.Context(), force)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, metrics)
	}
}

func DashboardCompany(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force := validators.ParseQueryBool(r, "refresh")
		dashboard, err := svc.CompanyDashboard(r.Context(), middleware.UserIDFromContext(r.Context()), force)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dashboard)
	}
}
