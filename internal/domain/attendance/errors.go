package attendance

import "errors"

var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidDateRange   = errors.New("from date must not be after to date")

	// Returned by the store when a conditional write finds the slot already taken.
	// Services turn these into outcomes, never into API errors.
	ErrAlreadyCheckedIn  = errors.New("already checked in")
	ErrAlreadyCheckedOut = errors.New("already checked out")
)
