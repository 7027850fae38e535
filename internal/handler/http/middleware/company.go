package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
)

// RequireCompany rejects tokens that are not scoped to a company. Every
// payroll closing query is filtered by that company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := jwt.ClaimsFromContext(r.Context()); err != nil {
			response.HandleError(w, jwt.ErrMissingCompany)
			return
		}

		next.ServeHTTP(w, r)
	})
}
