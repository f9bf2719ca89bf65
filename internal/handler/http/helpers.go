package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
)

var errNotOwner = apperror.New(apperror.ErrForbidden, "record belongs to another employee")

// decodeJSON decodes the body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Debug(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// actorOrUnauthorized returns the authenticated caller or writes a 401.
func actorOrUnauthorized(w http.ResponseWriter, r *http.Request) (middleware.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return actor, ok
}

// checkOwner rejects an employee id the caller may not act for. An empty id
// is left to request validation.
func checkOwner(actor middleware.Actor, employeeID string) error {
	if employeeID != "" && !actor.CanActFor(employeeID) {
		return errNotOwner
	}
	return nil
}

// scopeToCaller pins a list filter to the caller's own records unless the
// caller is a manager.
func scopeToCaller(actor middleware.Actor, employeeID *string) (*string, error) {
	if actor.IsManager() {
		return employeeID, nil
	}
	if employeeID != nil && *employeeID != actor.EmployeeID {
		return nil, errNotOwner
	}
	own := actor.EmployeeID
	return &own, nil
}

// optionalQuery returns nil for an absent or empty query parameter.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}
