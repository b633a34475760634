package attendance

import (
	"time"
)

type Status string

const (
	StatusOnTime  Status = "on_time"
	StatusLate    Status = "late"
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

var StatusValues = []string{
	string(StatusOnTime),
	string(StatusLate),
	string(StatusPresent),
	string(StatusAbsent),
}

// Precedence ranks statuses when several records fall on the same day.
// A late shift dominates any attended shift, which dominates absence.
func (s Status) Precedence() int {
	switch s {
	case StatusLate:
		return 3
	case StatusPresent, StatusOnTime:
		return 2
	case StatusAbsent:
		return 1
	default:
		return 0
	}
}

// AggregateStatus folds per-shift statuses into a single day status.
// A day with no records is absent.
func AggregateStatus(statuses ...Status) Status {
	result := StatusAbsent
	for _, s := range statuses {
		if s.Precedence() > result.Precedence() {
			result = s
		}
	}
	return result
}

// Attendance is one (employee, date, shift) record.
type Attendance struct {
	ID           string
	EmployeeID   string
	ShiftID      string
	Date         time.Time
	CheckIn      *time.Time
	CheckOut     *time.Time
	Status       Status
	LateMinutes  int
	EarlyMinutes int
	WorkHours    *float64
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined for list views
	EmployeeName *string
	ShiftName    *string
}

const DateLayout = "2006-01-02"

// DateKey returns the calendar day of t in loc, anchored at local noon so
// that later zone conversions cannot move it onto a neighbouring day.
func DateKey(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 12, 0, 0, 0, loc)
}

// DayOf re-anchors a stored calendar date in loc. The year, month and day are
// taken as they are; the value is never converted between zones.
func DayOf(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)
}

// ParseDateKey parses "YYYY-MM-DD" into a noon-anchored date key.
func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc), nil
}

// DateString formats a date key using its own location.
func DateString(date time.Time) string {
	return date.Format(DateLayout)
}

// MonthRange returns the first and last date keys of the month.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 12, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first, last
}
