package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/utils"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
)

type CheckInRequest struct {
	ShiftID string `json:"shift_id"`
}

func (r *CheckInRequest) Validate() error {
	return validateShiftID(r.ShiftID)
}

type CheckOutRequest struct {
	ShiftID string `json:"shift_id"`
}

func (r *CheckOutRequest) Validate() error {
	return validateShiftID(r.ShiftID)
}

func validateShiftID(id string) error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(id) {
		errs.Add("shift_id", "shift_id is required")
	} else if !validator.IsValidUUID(id) {
		errs.Add("shift_id", "shift_id must be a valid UUID")
	}
	return errs.OrNil()
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	FromDate   *string `json:"from_date,omitempty"` // YYYY-MM-DD
	ToDate     *string `json:"to_date,omitempty"`   // YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	errs := utils.NormalizePage(&f.Page, &f.Limit)

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}

	var from, to time.Time
	var fromOK, toOK bool
	if f.FromDate != nil {
		if from, fromOK = validator.IsValidDate(*f.FromDate); !fromOK {
			errs.Add("from_date", "from_date must be in YYYY-MM-DD format")
		}
	}
	if f.ToDate != nil {
		if to, toOK = validator.IsValidDate(*f.ToDate); !toOK {
			errs.Add("to_date", "to_date must be in YYYY-MM-DD format")
		}
	}
	if fromOK && toOK && from.After(to) {
		errs.Add("from_date", "from_date must not be after to_date")
	}

	return errs.OrNil()
}

type AttendanceResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	ShiftID      string   `json:"shift_id"`
	ShiftName    *string  `json:"shift_name,omitempty"`
	Date         string   `json:"date"`
	CheckIn      *string  `json:"check_in"`
	CheckOut     *string  `json:"check_out"`
	Status       string   `json:"status"`
	LateMinutes  int      `json:"late_minutes"`
	EarlyMinutes int      `json:"early_minutes"`
	WorkHours    *float64 `json:"work_hours"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func ToResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		ShiftID:      a.ShiftID,
		ShiftName:    a.ShiftName,
		Date:         DateString(a.Date),
		CheckIn:      formatTime(a.CheckIn),
		CheckOut:     formatTime(a.CheckOut),
		Status:       string(a.Status),
		LateMinutes:  a.LateMinutes,
		EarlyMinutes: a.EarlyMinutes,
		WorkHours:    a.WorkHours,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.Format(time.RFC3339),
	}
}

func ToResponses(records []Attendance) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for _, a := range records {
		out = append(out, ToResponse(a))
	}
	return out
}

func toResponsePtr(a *Attendance) *AttendanceResponse {
	if a == nil {
		return nil
	}
	r := ToResponse(*a)
	return &r
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type CheckInResponse struct {
	CheckInOutcome
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

func ToCheckInResponse(r CheckInResult) CheckInResponse {
	return CheckInResponse{CheckInOutcome: r.Outcome, Attendance: toResponsePtr(r.Attendance)}
}

type CheckOutResponse struct {
	CheckOutOutcome
	WorkHours  *float64            `json:"work_hours,omitempty"`
	Attendance *AttendanceResponse `json:"attendance,omitempty"`
}

func ToCheckOutResponse(r CheckOutResult) CheckOutResponse {
	return CheckOutResponse{CheckOutOutcome: r.Outcome, WorkHours: r.WorkHours, Attendance: toResponsePtr(r.Attendance)}
}

type TodayStatusResponse struct {
	Attendance  *AttendanceResponse  `json:"attendance"`
	Shift       *shift.ShiftResponse `json:"shift,omitempty"`
	NextAction  string               `json:"next_action"`
	CanCheckIn  bool                 `json:"can_check_in"`
	CanCheckOut bool                 `json:"can_check_out"`
}

func ToTodayStatusResponse(s TodayStatus) TodayStatusResponse {
	resp := TodayStatusResponse{
		Attendance:  toResponsePtr(s.Attendance),
		NextAction:  string(s.NextAction),
		CanCheckIn:  s.CanCheckIn,
		CanCheckOut: s.CanCheckOut,
	}
	if s.Shift != nil {
		sr := shift.ToResponse(*s.Shift)
		resp.Shift = &sr
	}
	return resp
}

type DaySummaryResponse struct {
	Date      string  `json:"date"`
	Status    string  `json:"status"`
	WorkHours float64 `json:"work_hours"`
}

type MonthlySummaryResponse struct {
	Year            int                  `json:"year"`
	Month           int                  `json:"month"`
	TotalHours      float64              `json:"total_hours"`
	AttendanceCount int                  `json:"attendance_count"`
	Days            []DaySummaryResponse `json:"days"`
	Attendances     []AttendanceResponse `json:"attendances"`
}

func ToMonthlySummaryResponse(m MonthlySummary) MonthlySummaryResponse {
	days := make([]DaySummaryResponse, 0, len(m.Days))
	for _, d := range m.Days {
		days = append(days, DaySummaryResponse{Date: DateString(d.Date), Status: string(d.Status), WorkHours: d.WorkHours})
	}
	return MonthlySummaryResponse{
		Year:            m.Year,
		Month:           m.Month,
		TotalHours:      m.TotalHours,
		AttendanceCount: m.AttendanceCount,
		Days:            days,
		Attendances:     ToResponses(m.Attendances),
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func ToListResponse(records []Attendance, total int64, page, limit int) ListAttendanceResponse {
	return ListAttendanceResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  utils.TotalPages(total, limit),
		Showing:     utils.Showing(page, limit, total),
		Attendances: ToResponses(records),
	}
}
