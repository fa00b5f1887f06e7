package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/productivity"
	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/localday"
	"github.com/cmlabs-hris/productivity-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Scoring preconditions
	case errors.Is(err, productivity.ErrNotHistoricalDate):
		UnprocessableEntity(w, "NOT_HISTORICAL_DATE", "Batch recalculation is only allowed for dates before today")
	case errors.Is(err, productivity.ErrInvalidRange):
		UnprocessableEntity(w, "INVALID_RANGE", "The start of the range must not be after its end")
	case errors.Is(err, localday.ErrInvalidDate):
		UnprocessableEntity(w, "INVALID_DATE", "Date must be in YYYY-MM-DD format")
	case errors.Is(err, productivity.ErrNoWorkRecorded):
		NotFound(w, "No clock sessions or activity recorded for that day")
	case errors.Is(err, productivity.ErrScoreNotFound):
		NotFound(w, "Daily score not found")

	// Role configuration
	case errors.Is(err, role.ErrInvalidProfile), errors.Is(err, role.ErrInvalidRoleType):
		slog.Error("Invalid role configuration", "error", err)
		InternalServerError(w, "Role configuration is invalid")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
