package shift

import (
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
)

type CreateShiftRequest struct {
	Name                string `json:"name"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	EarlyCheckInMinutes int    `json:"early_check_in_minutes"`
	LateCheckoutMinutes int    `json:"late_checkout_minutes"`
}

func (r *CreateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	validateWindow(&errs, r.StartTime, r.EndTime, r.EarlyCheckInMinutes, r.LateCheckoutMinutes)

	return errs.OrNil()
}

// UpdateShiftRequest replaces the shift definition; ID comes from the URL.
type UpdateShiftRequest struct {
	ID                  string `json:"-"`
	Name                string `json:"name"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	EarlyCheckInMinutes int    `json:"early_check_in_minutes"`
	LateCheckoutMinutes int    `json:"late_checkout_minutes"`
}

func (r *UpdateShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	validateWindow(&errs, r.StartTime, r.EndTime, r.EarlyCheckInMinutes, r.LateCheckoutMinutes)

	return errs.OrNil()
}

// Overnight shifts are not supported, so the end must be after the start.
func validateWindow(errs *validator.ValidationErrors, start, end string, early, late int) {
	startOK := validator.IsValidClock(start)
	endOK := validator.IsValidClock(end)
	if !startOK {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if !endOK {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if early < 0 {
		errs.Add("early_check_in_minutes", "early_check_in_minutes must be a non-negative number")
	}
	if late < 0 {
		errs.Add("late_checkout_minutes", "late_checkout_minutes must be a non-negative number")
	}
	if !startOK || !endOK {
		return
	}

	s, _ := ParseClock(start)
	e, _ := ParseClock(end)
	if e <= s {
		errs.Add("end_time", "end_time must be after start_time")
	}
	if early > 0 && s-early < 0 {
		errs.Add("early_check_in_minutes", "check-in window must not open before midnight")
	}
	if late > 0 && e+late >= MinutesPerDay {
		errs.Add("late_checkout_minutes", "check-out window must close before midnight")
	}
}

type ShiftResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	EarlyCheckInMinutes int    `json:"early_check_in_minutes"`
	LateCheckoutMinutes int    `json:"late_checkout_minutes"`
	Deleted             bool   `json:"deleted"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

func ToResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		ID:                  s.ID,
		Name:                s.Name,
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		EarlyCheckInMinutes: s.EarlyCheckInMinutes,
		LateCheckoutMinutes: s.LateCheckoutMinutes,
		Deleted:             s.Deleted,
		CreatedAt:           s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           s.UpdatedAt.Format(time.RFC3339),
	}
}

func ToResponses(shifts []Shift) []ShiftResponse {
	out := make([]ShiftResponse, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, ToResponse(s))
	}
	return out
}
