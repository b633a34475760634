package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Identity
	case errors.Is(err, user.ErrInvalidToken),
		errors.Is(err, user.ErrUserIDRequired),
		errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrEmployeeIDRequired):
		Forbidden(w, "This account is not linked to an employee")
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, correction.ErrForbidden):
		Forbidden(w, err.Error())

	// Shift domain errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, shift.ErrShiftNameExists):
		Conflict(w, "Shift name already exists")
	case errors.Is(err, shift.ErrNoActiveShift):
		NotFound(w, "No active shift")
	case errors.Is(err, shift.ErrInvalidClock):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance not found")
	case errors.Is(err, attendance.ErrInvalidMonth),
		errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Correction domain errors
	case errors.Is(err, correction.ErrCorrectionNotFound):
		NotFound(w, "Correction request not found")
	case errors.Is(err, correction.ErrInvalidState):
		Conflict(w, "Correction request already processed")
	case errors.Is(err, correction.ErrShiftRequired),
		errors.Is(err, correction.ErrInvalidTimeRange),
		errors.Is(err, correction.ErrDateRequired):
		BadRequest(w, err.Error(), nil)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
