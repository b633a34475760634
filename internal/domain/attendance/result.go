package attendance

import (
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
)

type CheckInResult struct {
	Outcome    CheckInOutcome
	Attendance *Attendance
}

type CheckOutResult struct {
	Outcome    CheckOutOutcome
	WorkHours  *float64
	Attendance *Attendance
}

type NextAction string

const (
	NextCheckIn  NextAction = "check_in"
	NextCheckOut NextAction = "check_out"
	NextDone     NextAction = "done"
)

// TodayStatus tells a client what the employee can do next. The Can flags
// reflect the evaluator at the time of the request and are false when the
// shift is unknown.
type TodayStatus struct {
	Attendance  *Attendance
	Shift       *shift.Shift
	NextAction  NextAction
	CanCheckIn  bool
	CanCheckOut bool
}

type DaySummary struct {
	Date      time.Time
	Status    Status
	WorkHours float64
}

type MonthlySummary struct {
	Year            int
	Month           int
	TotalHours      float64
	AttendanceCount int
	Attendances     []Attendance
	Days            []DaySummary
}
