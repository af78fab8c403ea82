package middleware

import (
	"net/http"

	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/pkg/enums"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

// RequireAccountType rejects requests whose authenticated account is not
// one of the allowed types.
func RequireAccountType(logg *logger.Logger, allowed ...enums.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actual := AccountTypeFromContext(r.Context())
			for _, accountType := range allowed {
				if actual == accountType {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "account type not allowed"))
		})
	}
}

// RequireAdmin guards the administrator-only surface.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireAccountType(logg, enums.AccountTypeAdmin)
}

// RequireCompany guards the vendor surface.
func RequireCompany(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireAccountType(logg, enums.AccountTypeCompany)
}
