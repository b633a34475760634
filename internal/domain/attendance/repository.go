package attendance

import (
	"context"
	"time"
)

// AttendanceRepository persists attendance records.
//
// The unique key (employee_id, date, shift_id) is the only concurrency
// control: UpsertCheckIn and RecordCheckOut are conditional writes, so two
// racing requests for the same key cannot both succeed. Dates are compared
// by calendar day.
type AttendanceRepository interface {
	// UpsertCheckIn inserts the record, or revives a row for the same key
	// that has no check-in or was soft-deleted. ErrAlreadyCheckedIn when the
	// key already holds a live check-in. The check-out side of a is ignored:
	// a stored check-out is kept when it is not before the new check-in, and
	// work_hours is derived from the pair that ends up stored.
	UpsertCheckIn(ctx context.Context, a Attendance) (Attendance, error)

	// RecordCheckOut sets check_out only while it is still null.
	// ErrAlreadyCheckedOut when another request got there first.
	RecordCheckOut(ctx context.Context, id string, checkOut time.Time, earlyMinutes int, workHours *float64) (Attendance, error)

	// Upsert writes a corrected record on its key. A nil check time keeps the
	// stored one when it is ordered with the side being written, otherwise it
	// is cleared. Minutes of a kept side and work_hours come from the stored pair.
	Upsert(ctx context.Context, a Attendance) (Attendance, error)

	// GetByKey returns nil, nil when no live record exists.
	GetByKey(ctx context.Context, employeeID string, date time.Time, shiftID string) (*Attendance, error)

	// GetByID locks the row until commit when ctx carries a transaction.
	GetByID(ctx context.Context, id string) (Attendance, error)

	// ListByEmployeeDate returns every live record of the day, latest check-in first.
	ListByEmployeeDate(ctx context.Context, employeeID string, date time.Time) ([]Attendance, error)

	// ListByRange returns live records with from <= date <= to, newest date first.
	ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	Update(ctx context.Context, a Attendance) (Attendance, error)
}
