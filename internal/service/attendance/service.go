package attendance

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"go.uber.org/zap"
)

type AttendanceServiceImpl struct {
	attendances attendance.AttendanceRepository
	shifts      shift.ShiftRepository
	loc         *time.Location
	logger      *zap.Logger
}

// activeShift loads a shift that can still take attendance.
func (s *AttendanceServiceImpl) activeShift(ctx context.Context, shiftID string) (shift.Shift, error) {
	sh, err := s.shifts.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, shift.ErrShiftNotFound) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}
	if sh.Deleted {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return sh, nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID, shiftID string, now time.Time) (attendance.CheckInResult, error) {
	sh, err := s.activeShift(ctx, shiftID)
	if err != nil {
		return attendance.CheckInResult{}, err
	}
	window, err := attendance.WindowFor(sh)
	if err != nil {
		return attendance.CheckInResult{}, err
	}

	now = now.In(s.loc)
	date := attendance.DateKey(now, s.loc)

	existing, err := s.attendances.GetByKey(ctx, employeeID, date, sh.ID)
	if err != nil {
		return attendance.CheckInResult{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	outcome := attendance.EvaluateCheckIn(window, now, existing != nil && existing.CheckIn != nil)
	if !outcome.Valid {
		return attendance.CheckInResult{Outcome: outcome, Attendance: existing}, nil
	}

	record := attendance.Attendance{
		EmployeeID:  employeeID,
		ShiftID:     sh.ID,
		Date:        date,
		CheckIn:     &now,
		Status:      attendance.StatusPresent,
		LateMinutes: outcome.LateMinutes,
	}
	if outcome.Code == attendance.CodeLate {
		record.Status = attendance.StatusLate
	}
	saved, err := s.attendances.UpsertCheckIn(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			s.logger.Info("concurrent check-in lost the race",
				zap.String("employee_id", employeeID),
				zap.String("shift_id", sh.ID),
				zap.String("date", attendance.DateString(date)),
			)
			current, getErr := s.attendances.GetByKey(ctx, employeeID, date, sh.ID)
			if getErr != nil {
				return attendance.CheckInResult{}, fmt.Errorf("failed to reload attendance: %w", getErr)
			}
			return attendance.CheckInResult{
				Outcome:    attendance.EvaluateCheckIn(window, now, true),
				Attendance: current,
			}, nil
		}
		return attendance.CheckInResult{}, fmt.Errorf("failed to save check-in: %w", err)
	}

	return attendance.CheckInResult{Outcome: outcome, Attendance: &saved}, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID, shiftID string, now time.Time) (attendance.CheckOutResult, error) {
	sh, err := s.activeShift(ctx, shiftID)
	if err != nil {
		return attendance.CheckOutResult{}, err
	}
	window, err := attendance.WindowFor(sh)
	if err != nil {
		return attendance.CheckOutResult{}, err
	}

	now = now.In(s.loc)
	date := attendance.DateKey(now, s.loc)

	existing, err := s.attendances.GetByKey(ctx, employeeID, date, sh.ID)
	if err != nil {
		return attendance.CheckOutResult{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	var checkIn *time.Time
	alreadyOut := false
	if existing != nil {
		checkIn = existing.CheckIn
		alreadyOut = existing.CheckOut != nil
	}

	outcome := attendance.EvaluateCheckOut(window, checkIn, alreadyOut, now)
	if !outcome.Valid {
		return attendance.CheckOutResult{Outcome: outcome, Attendance: existing}, nil
	}

	hours := attendance.WorkHours(checkIn, &now)
	saved, err := s.attendances.RecordCheckOut(ctx, existing.ID, now, outcome.EarlyMinutes, hours)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedOut) {
			s.logger.Info("concurrent check-out lost the race",
				zap.String("employee_id", employeeID),
				zap.String("attendance_id", existing.ID),
			)
			current, getErr := s.attendances.GetByKey(ctx, employeeID, date, sh.ID)
			if getErr != nil {
				return attendance.CheckOutResult{}, fmt.Errorf("failed to reload attendance: %w", getErr)
			}
			return attendance.CheckOutResult{
				Outcome:    attendance.EvaluateCheckOut(window, checkIn, true, now),
				Attendance: current,
			}, nil
		}
		return attendance.CheckOutResult{}, fmt.Errorf("failed to save check-out: %w", err)
	}

	return attendance.CheckOutResult{Outcome: outcome, WorkHours: hours, Attendance: &saved}, nil
}

// GetTodayAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodayAttendance(ctx context.Context, employeeID string, shiftID *string, now time.Time) (*attendance.Attendance, error) {
	date := attendance.DateKey(now, s.loc)

	if shiftID != nil {
		rec, err := s.attendances.GetByKey(ctx, employeeID, date, *shiftID)
		if err != nil {
			return nil, fmt.Errorf("failed to get today's attendance: %w", err)
		}
		return rec, nil
	}

	records, err := s.attendances.ListByEmployeeDate(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's attendance: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// GetTodayStatus implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetTodayStatus(ctx context.Context, employeeID string, shiftID *string, now time.Time) (attendance.TodayStatus, error) {
	now = now.In(s.loc)

	var sh *shift.Shift
	if shiftID != nil {
		found, err := s.activeShift(ctx, *shiftID)
		if err != nil {
			return attendance.TodayStatus{}, err
		}
		sh = &found
	}

	rec, err := s.GetTodayAttendance(ctx, employeeID, shiftID, now)
	if err != nil {
		return attendance.TodayStatus{}, err
	}

	if sh == nil && rec != nil {
		found, err := s.shifts.GetByID(ctx, rec.ShiftID)
		if err != nil && !errors.Is(err, shift.ErrShiftNotFound) {
			return attendance.TodayStatus{}, fmt.Errorf("failed to get shift: %w", err)
		}
		if err == nil && !found.Deleted {
			sh = &found
		}
	}

	status := attendance.TodayStatus{Attendance: rec, Shift: sh}
	switch {
	case rec == nil || rec.CheckIn == nil:
		status.NextAction = attendance.NextCheckIn
	case rec.CheckOut == nil:
		status.NextAction = attendance.NextCheckOut
	default:
		status.NextAction = attendance.NextDone
	}

	if sh == nil {
		return status, nil
	}
	window, err := attendance.WindowFor(*sh)
	if err != nil {
		return attendance.TodayStatus{}, err
	}

	switch status.NextAction {
	case attendance.NextCheckIn:
		status.CanCheckIn = attendance.EvaluateCheckIn(window, now, false).Valid
	case attendance.NextCheckOut:
		status.CanCheckOut = attendance.EvaluateCheckOut(window, rec.CheckIn, false, now).Valid
	}

	return status, nil
}

// GetMonthlyWorkHours implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyWorkHours(ctx context.Context, employeeID string, year, month int) (attendance.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return attendance.MonthlySummary{}, attendance.ErrInvalidMonth
	}

	first, last := attendance.MonthRange(year, time.Month(month), s.loc)
	records, err := s.attendances.ListByRange(ctx, employeeID, first, last)
	if err != nil {
		return attendance.MonthlySummary{}, fmt.Errorf("failed to list monthly attendance: %w", err)
	}

	type dayAcc struct {
		date     time.Time
		statuses []attendance.Status
		hours    float64
	}
	days := map[string]*dayAcc{}

	total := 0.0
	for _, rec := range records {
		hours := 0.0
		if rec.WorkHours != nil {
			hours = *rec.WorkHours
		}
		total += hours

		key := attendance.DateString(rec.Date)
		acc, ok := days[key]
		if !ok {
			acc = &dayAcc{date: rec.Date}
			days[key] = acc
		}
		acc.statuses = append(acc.statuses, rec.Status)
		acc.hours += hours
	}

	summary := attendance.MonthlySummary{
		Year:            year,
		Month:           month,
		TotalHours:      round2(total),
		AttendanceCount: len(records),
		Attendances:     records,
		Days:            make([]attendance.DaySummary, 0, len(days)),
	}
	for _, acc := range days {
		summary.Days = append(summary.Days, attendance.DaySummary{
			Date:      acc.date,
			Status:    attendance.AggregateStatus(acc.statuses...),
			WorkHours: round2(acc.hours),
		})
	}
	slices.SortFunc(summary.Days, func(a, b attendance.DaySummary) int {
		return cmp.Compare(attendance.DateString(a.Date), attendance.DateString(b.Date))
	})

	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetAttendanceHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendanceHistory(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	if attendance.DateString(from) > attendance.DateString(to) {
		return nil, attendance.ErrInvalidDateRange
	}

	records, err := s.attendances.ListByRange(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance history: %w", err)
	}
	return records, nil
}

// GetAllAttendances implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAllAttendances(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	records, total, err := s.attendances.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	return records, total, nil
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo shift.ShiftRepository,
	loc *time.Location,
	logger *zap.Logger,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		attendances: attendanceRepo,
		shifts:      shiftRepo,
		loc:         loc,
		logger:      logger.Named("attendance"),
	}
}
