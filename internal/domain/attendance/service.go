package attendance

import (
	"context"
	"time"
)

// AttendanceService drives the check-in/check-out state machine.
// Every time-sensitive call takes now explicitly.
type AttendanceService interface {
	CheckIn(ctx context.Context, employeeID, shiftID string, now time.Time) (CheckInResult, error)
	CheckOut(ctx context.Context, employeeID, shiftID string, now time.Time) (CheckOutResult, error)

	// GetTodayAttendance returns the record for the given shift, or the most
	// recent record of the day when shiftID is nil. Nil when none exists.
	GetTodayAttendance(ctx context.Context, employeeID string, shiftID *string, now time.Time) (*Attendance, error)
	GetTodayStatus(ctx context.Context, employeeID string, shiftID *string, now time.Time) (TodayStatus, error)

	GetMonthlyWorkHours(ctx context.Context, employeeID string, year, month int) (MonthlySummary, error)
	GetAttendanceHistory(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	GetAllAttendances(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}
