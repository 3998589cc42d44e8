package response

import (
	"errors"
	"net/http"

	"github.com/meetinghours/attendance-backend/internal/compliance"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/auth"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Ambiguity lists the candidates so the caller can resubmit with a window_id or times
	var ambiguous *attendance.AmbiguousMatchError
	if errors.As(err, &ambiguous) {
		details := make(map[string]string, len(ambiguous.Candidates))
		for _, c := range ambiguous.Candidates {
			details[c.ID] = c.StartTime.Format("2006-01-02T15:04:05Z07:00") + " " + c.Description
		}
		writeError(w, http.StatusConflict, "AMBIGUOUS_WINDOW", attendance.ErrAmbiguousWindow.Error(), details)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenRevoked):
		Unauthorized(w, "Token has been revoked")
	case errors.Is(err, auth.ErrEmailNotVerified):
		Forbidden(w, "Email not verified")
	case errors.Is(err, auth.ErrEmailDomainNotAllowed):
		Forbidden(w, err.Error())

	// User domain errors
	case errors.Is(err, user.ErrActorRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrCannotDemoteSelf), errors.Is(err, user.ErrCannotDeleteSelf):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrNoMatchingWindow):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrAmbiguousWindow):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	case errors.Is(err, attendance.ErrNoOverlap):
		writeError(w, http.StatusUnprocessableEntity, "NO_OVERLAP", err.Error(), nil)
	case errors.Is(err, attendance.ErrInvalidPartialHours):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Window and period domain errors
	case errors.Is(err, window.ErrWindowNotFound):
		NotFound(w, "Time window not found")
	case errors.Is(err, window.ErrInvalidWindowRange), errors.Is(err, window.ErrInvalidCategory):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, period.ErrPeriodNotFound):
		NotFound(w, "Reporting period not found")
	case errors.Is(err, period.ErrNoActivePeriod):
		NotFound(w, err.Error())
	case errors.Is(err, period.ErrInvalidPeriodRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, metrics.ErrPeriodRequired):
		BadRequest(w, err.Error(), nil)

	// Excuse domain errors
	case errors.Is(err, excuse.ErrExcuseNotFound):
		NotFound(w, "Excuse not found")
	case errors.Is(err, excuse.ErrRequestNotFound):
		NotFound(w, "Excuse request not found")
	case errors.Is(err, excuse.ErrExcuseExists), errors.Is(err, excuse.ErrRequestExists):
		Conflict(w, err.Error())
	case errors.Is(err, excuse.ErrRequestAlreadyProcessed):
		Conflict(w, "Excuse request already processed")
	case errors.Is(err, excuse.ErrOutreachNotExcusable), errors.Is(err, excuse.ErrWindowOutsidePeriod):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, compliance.ErrInvalidPolicy):
		InternalServerError(w, "Compliance policy is misconfigured")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
