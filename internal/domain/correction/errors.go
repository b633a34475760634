package correction

import "errors"

var (
	ErrCorrectionNotFound = errors.New("correction request not found")
	ErrInvalidState       = errors.New("correction request has already been approved or rejected")
	ErrShiftRequired      = errors.New("correction request does not identify a shift and no fallback shift is allowed")
	ErrInvalidTimeRange   = errors.New("check-out cannot be before check-in")
	ErrDateRequired       = errors.New("correction request has no date to apply to")
	ErrForbidden          = errors.New("not allowed to view this correction request")
)
