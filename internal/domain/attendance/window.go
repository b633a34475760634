package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
)

const (
	// CheckInGraceMinutes is how long after shift start a check-in is still accepted.
	CheckInGraceMinutes = 30
	// CheckOutGraceMinutes is how long before shift end a check-out is already accepted.
	CheckOutGraceMinutes = 30
)

type OutcomeCode string

const (
	CodeOnTime            OutcomeCode = "on_time"
	CodeLate              OutcomeCode = "late"
	CodeOK                OutcomeCode = "ok"
	CodeTooEarly          OutcomeCode = "too_early"
	CodeTooLate           OutcomeCode = "too_late"
	CodeAlreadyCheckedIn  OutcomeCode = "already_checked_in"
	CodeNotCheckedIn      OutcomeCode = "not_checked_in"
	CodeAlreadyCheckedOut OutcomeCode = "already_checked_out"
)

// ShiftWindow is a shift reduced to minutes after midnight.
type ShiftWindow struct {
	StartMinutes        int
	EndMinutes          int
	EarlyCheckInMinutes int
	LateCheckoutMinutes int
}

func WindowFor(s shift.Shift) (ShiftWindow, error) {
	start, err := shift.ParseClock(s.StartTime)
	if err != nil {
		return ShiftWindow{}, fmt.Errorf("shift %s start: %w", s.ID, err)
	}
	end, err := shift.ParseClock(s.EndTime)
	if err != nil {
		return ShiftWindow{}, fmt.Errorf("shift %s end: %w", s.ID, err)
	}
	return ShiftWindow{
		StartMinutes:        start,
		EndMinutes:          end,
		EarlyCheckInMinutes: s.EarlyCheckInMinutes,
		LateCheckoutMinutes: s.LateCheckoutMinutes,
	}, nil
}

// MinutesOfDay reads the wall clock of t in its own location. Callers move
// timestamps into the business location first.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

type CheckInOutcome struct {
	Valid       bool        `json:"valid"`
	Code        OutcomeCode `json:"status_code"`
	Message     string      `json:"message"`
	LateMinutes int         `json:"late_minutes"`
}

func EvaluateCheckIn(w ShiftWindow, now time.Time, alreadyCheckedIn bool) CheckInOutcome {
	if alreadyCheckedIn {
		return CheckInOutcome{Code: CodeAlreadyCheckedIn, Message: "You have already checked in for this shift today"}
	}

	current := MinutesOfDay(now)
	earliest := w.StartMinutes - w.EarlyCheckInMinutes
	latest := w.StartMinutes + CheckInGraceMinutes

	if current < earliest {
		return CheckInOutcome{
			Code:    CodeTooEarly,
			Message: fmt.Sprintf("Too early to check in, check-in opens in %d minutes", earliest-current),
		}
	}
	if current > latest {
		return CheckInOutcome{
			Code:    CodeTooLate,
			Message: fmt.Sprintf("Too late to check in, check-in closed at %s", shift.FormatClock(latest)),
		}
	}
	if current > w.StartMinutes {
		late := current - w.StartMinutes
		return CheckInOutcome{
			Valid:       true,
			Code:        CodeLate,
			Message:     fmt.Sprintf("Checked in %d minutes late", late),
			LateMinutes: late,
		}
	}
	return CheckInOutcome{Valid: true, Code: CodeOnTime, Message: "Checked in on time"}
}

type CheckOutOutcome struct {
	Valid        bool        `json:"valid"`
	Code         OutcomeCode `json:"status_code"`
	Message      string      `json:"message"`
	WorkMinutes  int         `json:"work_minutes"`
	EarlyMinutes int         `json:"early_minutes"`
}

func EvaluateCheckOut(w ShiftWindow, checkIn *time.Time, alreadyCheckedOut bool, now time.Time) CheckOutOutcome {
	if checkIn == nil {
		return CheckOutOutcome{Code: CodeNotCheckedIn, Message: "You have not checked in for this shift today"}
	}
	if alreadyCheckedOut {
		return CheckOutOutcome{Code: CodeAlreadyCheckedOut, Message: "You have already checked out for this shift today"}
	}

	current := MinutesOfDay(now)
	earliest := w.EndMinutes - CheckOutGraceMinutes
	latest := w.EndMinutes + w.LateCheckoutMinutes

	if current < earliest {
		return CheckOutOutcome{
			Code:    CodeTooEarly,
			Message: fmt.Sprintf("Too early to check out, please wait %d more minutes", earliest-current),
		}
	}
	if current > latest {
		return CheckOutOutcome{
			Code:    CodeTooLate,
			Message: fmt.Sprintf("Too late to check out, check-out closed at %s", shift.FormatClock(latest)),
		}
	}

	return CheckOutOutcome{
		Valid:        true,
		Code:         CodeOK,
		Message:      "Checked out successfully",
		WorkMinutes:  int(now.Sub(*checkIn) / time.Minute),
		EarlyMinutes: EarlyMinutesFor(w, now),
	}
}

// LateMinutesFor is the lateness of a check-in relative to shift start, never negative.
func LateMinutesFor(w ShiftWindow, checkIn time.Time) int {
	return max(0, MinutesOfDay(checkIn)-w.StartMinutes)
}

// EarlyMinutesFor is how long before shift end a check-out happened, never negative.
func EarlyMinutesFor(w ShiftWindow, checkOut time.Time) int {
	return max(0, w.EndMinutes-MinutesOfDay(checkOut))
}

// WorkHours is (out - in) in hours rounded to two decimals, or nil unless
// both sides are known and out is not before in.
func WorkHours(checkIn, checkOut *time.Time) *float64 {
	if checkIn == nil || checkOut == nil || checkOut.Before(*checkIn) {
		return nil
	}
	hours := math.Round(checkOut.Sub(*checkIn).Hours()*100) / 100
	return &hours
}
