package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses by their apperror kind.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	case errors.Is(err, apperror.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, apperror.ErrInvalidArgument):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, apperror.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, apperror.ErrConflict):
		Conflict(w, err.Error())
	case errors.Is(err, apperror.ErrConcurrency):
		w.Header().Set("Retry-After", "1")
		ServiceUnavailable(w, "The resource is busy, please retry")
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
