package correction

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/utils"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
)

type CreateCorrectionRequest struct {
	RequestType   string  `json:"request_type"`
	Reason        string  `json:"reason"`
	AttendanceID  *string `json:"attendance_id,omitempty"`
	ShiftID       *string `json:"shift_id,omitempty"`
	RequestedDate *string `json:"requested_date,omitempty"` // YYYY-MM-DD
	NewCheckIn    *string `json:"new_check_in,omitempty"`   // RFC3339
	NewCheckOut   *string `json:"new_check_out,omitempty"`  // RFC3339
}

func (r *CreateCorrectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestType) {
		errs.Add("request_type", "request_type is required")
	} else if !validator.IsInSlice(r.RequestType, RequestTypeValues) {
		errs.Add("request_type", "request_type must be one of: "+strings.Join(RequestTypeValues, ", "))
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	if r.AttendanceID != nil && !validator.IsValidUUID(*r.AttendanceID) {
		errs.Add("attendance_id", "attendance_id must be a valid UUID")
	}
	if r.ShiftID != nil && !validator.IsValidUUID(*r.ShiftID) {
		errs.Add("shift_id", "shift_id must be a valid UUID")
	}
	if r.RequestedDate != nil {
		if _, ok := validator.IsValidDate(*r.RequestedDate); !ok {
			errs.Add("requested_date", "requested_date must be in YYYY-MM-DD format")
		}
	}

	var in, out time.Time
	var inOK, outOK bool
	if r.NewCheckIn != nil {
		if in, inOK = validator.IsValidDateTime(*r.NewCheckIn); !inOK {
			errs.Add("new_check_in", "new_check_in must be an ISO8601 timestamp")
		}
	}
	if r.NewCheckOut != nil {
		if out, outOK = validator.IsValidDateTime(*r.NewCheckOut); !outOK {
			errs.Add("new_check_out", "new_check_out must be an ISO8601 timestamp")
		}
	}
	if inOK && outOK && out.Before(in) {
		errs.Add("new_check_out", "new_check_out must not be before new_check_in")
	}

	switch RequestType(r.RequestType) {
	case TypeForgotCheckOut:
		if r.AttendanceID == nil && r.NewCheckOut == nil {
			errs.Add("new_check_out", "forgot_checkout requires attendance_id or new_check_out")
		}
	case TypeForgotCheckIn:
		if r.AttendanceID == nil && r.NewCheckIn == nil {
			errs.Add("new_check_in", "forgot_checkin requires attendance_id or new_check_in")
		}
	}

	if r.AttendanceID == nil && r.RequestedDate == nil && r.NewCheckIn == nil && r.NewCheckOut == nil {
		errs.Add("requested_date", "requested_date is required when attendance_id is not set")
	}

	return errs.OrNil()
}

// ToEntity converts a validated request into a pending CorrectionRequest.
// Timestamps are moved into loc and the requested date becomes a date key.
func (r *CreateCorrectionRequest) ToEntity(employeeID string, loc *time.Location) (CorrectionRequest, error) {
	req := CorrectionRequest{
		EmployeeID:   employeeID,
		AttendanceID: r.AttendanceID,
		ShiftID:      r.ShiftID,
		RequestType:  RequestType(r.RequestType),
		Reason:       strings.TrimSpace(r.Reason),
		Status:       StatusPending,
	}

	if r.RequestedDate != nil {
		d, err := attendance.ParseDateKey(*r.RequestedDate, loc)
		if err != nil {
			return CorrectionRequest{}, err
		}
		req.RequestedDate = &d
	}
	if r.NewCheckIn != nil {
		t, ok := validator.IsValidDateTime(*r.NewCheckIn)
		if !ok {
			return CorrectionRequest{}, fmt.Errorf("invalid timestamp %q", *r.NewCheckIn)
		}
		t = t.In(loc)
		req.NewCheckIn = &t
	}
	if r.NewCheckOut != nil {
		t, ok := validator.IsValidDateTime(*r.NewCheckOut)
		if !ok {
			return CorrectionRequest{}, fmt.Errorf("invalid timestamp %q", *r.NewCheckOut)
		}
		t = t.In(loc)
		req.NewCheckOut = &t
	}

	return req, nil
}

type ReviewRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type CorrectionFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Status       *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *CorrectionFilter) Validate() error {
	errs := utils.NormalizePage(&f.Page, &f.Limit)

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs.Add("status", "status must be one of: "+strings.Join(StatusValues, ", "))
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	return errs.OrNil()
}

type CorrectionResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  *string `json:"employee_name,omitempty"`
	AttendanceID  *string `json:"attendance_id"`
	ShiftID       *string `json:"shift_id"`
	RequestType   string  `json:"request_type"`
	Reason        string  `json:"reason"`
	RequestedDate *string `json:"requested_date"`
	NewCheckIn    *string `json:"new_check_in"`
	NewCheckOut   *string `json:"new_check_out"`
	Status        string  `json:"status"`
	ReviewedBy    *string `json:"reviewed_by"`
	ReviewedAt    *string `json:"reviewed_at"`
	Notes         *string `json:"notes"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func ToResponse(c CorrectionRequest) CorrectionResponse {
	resp := CorrectionResponse{
		ID:           c.ID,
		EmployeeID:   c.EmployeeID,
		EmployeeName: c.EmployeeName,
		AttendanceID: c.AttendanceID,
		ShiftID:      c.ShiftID,
		RequestType:  string(c.RequestType),
		Reason:       c.Reason,
		NewCheckIn:   formatTime(c.NewCheckIn),
		NewCheckOut:  formatTime(c.NewCheckOut),
		Status:       string(c.Status),
		ReviewedBy:   c.ReviewedBy,
		ReviewedAt:   formatTime(c.ReviewedAt),
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
	if c.RequestedDate != nil {
		d := attendance.DateString(*c.RequestedDate)
		resp.RequestedDate = &d
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type ListCorrectionResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Corrections []CorrectionResponse `json:"corrections"`
}

func ToListResponse(items []CorrectionRequest, total int64, page, limit int) ListCorrectionResponse {
	out := make([]CorrectionResponse, 0, len(items))
	for _, c := range items {
		out = append(out, ToResponse(c))
	}
	return ListCorrectionResponse{
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
		TotalPages:  utils.TotalPages(total, limit),
		Showing:     utils.Showing(page, limit, total),
		Corrections: out,
	}
}
