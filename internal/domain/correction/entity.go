package correction

import "time"

type RequestType string

const (
	TypeCorrection     RequestType = "correction"
	TypeForgotCheckIn  RequestType = "forgot_checkin"
	TypeForgotCheckOut RequestType = "forgot_checkout"
)

var RequestTypeValues = []string{
	string(TypeCorrection),
	string(TypeForgotCheckIn),
	string(TypeForgotCheckOut),
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
}

// CorrectionRequest asks a reviewer to rewrite the check times of one
// attendance record, or to create it when AttendanceID is nil.
// Status only ever moves pending -> approved or pending -> rejected.
type CorrectionRequest struct {
	ID            string
	EmployeeID    string
	AttendanceID  *string
	ShiftID       *string
	RequestType   RequestType
	Reason        string
	RequestedDate *time.Time
	NewCheckIn    *time.Time
	NewCheckOut   *time.Time
	Status        Status
	ReviewedBy    *string
	ReviewedAt    *time.Time
	Notes         *string
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// DTO
	EmployeeName *string
}

// ShiftFallback decides which shift an approved correction lands on when
// the request names neither an attendance record nor a shift and the
// employee has no record on that day.
type ShiftFallback string

const (
	// FallbackFirstShift uses the earliest-starting active shift.
	FallbackFirstShift ShiftFallback = "first"
	// FallbackNone rejects the approval with ErrShiftRequired.
	FallbackNone ShiftFallback = "none"
)
