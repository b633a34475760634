package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"go.uber.org/zap"
)

// historyDefaultDays is the lookback used when /history gets no from date.
const historyDefaultDays = 30

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	loc               *time.Location
	now               func() time.Time
	logger            *zap.Logger
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, loc *time.Location, now func() time.Time, logger *zap.Logger) AttendanceHandler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		loc:               loc,
		now:               now,
		logger:            logger.Named("http.attendance"),
	}
}

// employeeFrom returns the employee behind the request; accounts without an
// employee link cannot take attendance.
func employeeFrom(r *http.Request) (user.Principal, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return user.Principal{}, user.ErrInvalidToken
	}
	if p.EmployeeID == "" {
		return user.Principal{}, user.ErrEmployeeIDRequired
	}
	return p, nil
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode check-in request", zap.Error(err))
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	// Denied attempts are still 200: the outcome says why.
	result, err := h.attendanceService.CheckIn(r.Context(), p.EmployeeID, req.ShiftID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Outcome.Message, attendance.ToCheckInResponse(result))
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode check-out request", zap.Error(err))
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), p.EmployeeID, req.ShiftID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Outcome.Message, attendance.ToCheckOutResponse(result))
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var shiftID *string
	if id := r.URL.Query().Get("shift_id"); id != "" {
		if !validator.IsValidUUID(id) {
			response.ValidationError(w, map[string]string{"shift_id": "shift_id must be a valid UUID"})
			return
		}
		shiftID = &id
	}

	status, err := h.attendanceService.GetTodayStatus(r.Context(), p.EmployeeID, shiftID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.ToTodayStatusResponse(status))
}

// GetMonthly implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	today := h.now().In(h.loc)
	year, month := today.Year(), int(today.Month())

	var errs validator.ValidationErrors
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !validator.IsNumeric(v) {
			errs.Add("year", "year must be a number")
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !validator.IsNumeric(v) {
			errs.Add("month", "month must be a number")
		}
		month = n
	}
	if err := errs.OrNil(); err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.attendanceService.GetMonthlyWorkHours(r.Context(), p.EmployeeID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.ToMonthlySummaryResponse(summary))
}

// GetHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	to := attendance.DateKey(h.now(), h.loc)
	from := to.AddDate(0, 0, -historyDefaultDays)

	var errs validator.ValidationErrors
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := attendance.ParseDateKey(v, h.loc)
		if err != nil {
			errs.Add("from", "from must be in YYYY-MM-DD format")
		}
		from = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := attendance.ParseDateKey(v, h.loc)
		if err != nil {
			errs.Add("to", "to must be in YYYY-MM-DD format")
		}
		to = d
	}
	if err := errs.OrNil(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.GetAttendanceHistory(r.Context(), p.EmployeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.ToResponses(records))
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := attendance.AttendanceFilter{
		EmployeeID: optionalQuery(q.Get("employee_id")),
		Status:     optionalQuery(q.Get("status")),
		FromDate:   optionalQuery(q.Get("from_date")),
		ToDate:     optionalQuery(q.Get("to_date")),
		Page:       intQuery(q.Get("page")),
		Limit:      intQuery(q.Get("limit")),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, total, err := h.attendanceService.GetAllAttendances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.ToListResponse(records, total, filter.Page, filter.Limit))
}

func optionalQuery(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// intQuery parses a paging parameter; anything unparsable falls back to the default.
func intQuery(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
