package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
)

// RequireOwner requires owner role
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if jwt.RoleFromContext(r.Context()) != jwt.RoleOwner {
			response.HandleError(w, jwt.ErrInsufficientRole)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := jwt.RoleFromContext(r.Context())
		if role != jwt.RoleManager && role != jwt.RoleOwner {
			response.HandleError(w, jwt.ErrInsufficientRole)
			return
		}

		next.ServeHTTP(w, r)
	})
}
