package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/user"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/handler/http/response"
)

func roleFromRequest(r *http.Request) (user.Role, map[string]interface{}, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", nil, false
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return "", nil, false
	}
	return user.Role(roleStr), claims, true
}

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _, ok := roleFromRequest(r)
		if !ok || !role.IsManager() {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _, ok := roleFromRequest(r)
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			if !user.HasPermission(role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrPermission lets a caller through when the URL parameter names
// their own employee_id claim, or when their role holds permission.
func RequireSelfOrPermission(param string, permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, claims, ok := roleFromRequest(r)
			if !ok {
				response.HandleError(w, user.ErrInsufficientPermissions)
				return
			}

			if user.HasPermission(role, permission) {
				next.ServeHTTP(w, r)
				return
			}

			own, _ := claims["employee_id"].(string)
			if own != "" && own == chi.URLParam(r, param) && user.HasPermission(role, user.PermissionPayrollViewOwn) {
				next.ServeHTTP(w, r)
				return
			}

			response.HandleError(w, user.ErrInsufficientPermissions)
		})
	}
}
