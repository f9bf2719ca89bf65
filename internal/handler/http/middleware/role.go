package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
)

// IsManager reports whether the caller may act on any employee's records.
func (a Actor) IsManager() bool {
	return a.Role == jwt.RoleManager || a.Role == jwt.RoleAdmin
}

// CanActFor reports whether the caller may read or change records owned by
// employeeID.
func (a Actor) CanActFor(employeeID string) bool {
	return a.IsManager() || a.EmployeeID == employeeID
}

// RequireManager admits managers and admins.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		if !actor.IsManager() {
			response.Forbidden(w, "Manager access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
