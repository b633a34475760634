package correction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"go.uber.org/zap"
)

type CorrectionServiceImpl struct {
	corrections correction.CorrectionRepository
	attendances attendance.AttendanceRepository
	shifts      shift.ShiftRepository
	tx          database.Transactor
	fallback    correction.ShiftFallback
	loc         *time.Location
	logger      *zap.Logger
}

// CreateRequest implements correction.CorrectionService.
func (s *CorrectionServiceImpl) CreateRequest(ctx context.Context, employeeID string, req correction.CreateCorrectionRequest) (correction.CorrectionRequest, error) {
	if err := req.Validate(); err != nil {
		return correction.CorrectionRequest{}, err
	}

	entity, err := req.ToEntity(employeeID, s.loc)
	if err != nil {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to build correction request: %w", err)
	}

	if entity.AttendanceID != nil {
		rec, err := s.attendances.GetByID(ctx, *entity.AttendanceID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return correction.CorrectionRequest{}, attendance.ErrAttendanceNotFound
			}
			return correction.CorrectionRequest{}, fmt.Errorf("failed to get attendance: %w", err)
		}
		// Someone else's record is reported as missing.
		if rec.EmployeeID != employeeID {
			return correction.CorrectionRequest{}, attendance.ErrAttendanceNotFound
		}
	}
	if entity.ShiftID != nil {
		if _, err := s.shifts.GetByID(ctx, *entity.ShiftID); err != nil {
			if errors.Is(err, shift.ErrShiftNotFound) {
				return correction.CorrectionRequest{}, shift.ErrShiftNotFound
			}
			return correction.CorrectionRequest{}, fmt.Errorf("failed to get shift: %w", err)
		}
	}

	created, err := s.corrections.Create(ctx, entity)
	if err != nil {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	s.logger.Info("correction request created",
		zap.String("correction_id", created.ID),
		zap.String("employee_id", employeeID),
		zap.String("type", string(created.RequestType)),
	)

	return created, nil
}

func (s *CorrectionServiceImpl) getPending(ctx context.Context, id string) (correction.CorrectionRequest, error) {
	req, err := s.corrections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) {
			return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	if req.Status != correction.StatusPending {
		return correction.CorrectionRequest{}, correction.ErrInvalidState
	}
	return req, nil
}

// Approve implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Approve(ctx context.Context, id, reviewerID string, notes *string, now time.Time) (correction.CorrectionRequest, error) {
	var approved correction.CorrectionRequest

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.getPending(ctx, id)
		if err != nil {
			return err
		}

		if req.NewCheckIn != nil || req.NewCheckOut != nil {
			if req.AttendanceID != nil {
				err = s.applyToRecord(ctx, req)
			} else {
				err = s.applyToDay(ctx, req)
			}
			if err != nil {
				return err
			}
		}

		approved, err = s.corrections.UpdateReview(ctx, id, correction.StatusApproved, reviewerID, notes, now)
		if err != nil {
			if errors.Is(err, correction.ErrInvalidState) {
				return correction.ErrInvalidState
			}
			return fmt.Errorf("failed to approve correction request: %w", err)
		}
		return nil
	})
	if err != nil {
		return correction.CorrectionRequest{}, err
	}

	s.logger.Info("correction request approved",
		zap.String("correction_id", id),
		zap.String("reviewer_id", reviewerID),
	)

	return approved, nil
}

// applyToRecord rewrites the referenced record. Status is kept as it was.
func (s *CorrectionServiceImpl) applyToRecord(ctx context.Context, req correction.CorrectionRequest) error {
	rec, err := s.attendances.GetByID(ctx, *req.AttendanceID)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to get attendance: %w", err)
	}

	// Historical records keep their shift even after it is retired.
	sh, err := s.shifts.GetByID(ctx, rec.ShiftID)
	if err != nil {
		return fmt.Errorf("failed to get shift of attendance %s: %w", rec.ID, err)
	}

	if req.NewCheckIn != nil {
		rec.CheckIn = s.local(req.NewCheckIn)
	}
	if req.NewCheckOut != nil {
		rec.CheckOut = s.local(req.NewCheckOut)
	}

	if err := s.recompute(&rec, sh); err != nil {
		return err
	}

	if _, err := s.attendances.Update(ctx, rec); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

// applyToDay creates or completes the record of the requested day.
func (s *CorrectionServiceImpl) applyToDay(ctx context.Context, req correction.CorrectionRequest) error {
	var date time.Time
	switch {
	case req.RequestedDate != nil:
		date = attendance.DayOf(*req.RequestedDate, s.loc)
	case req.NewCheckIn != nil:
		date = attendance.DateKey(*req.NewCheckIn, s.loc)
	case req.NewCheckOut != nil:
		date = attendance.DateKey(*req.NewCheckOut, s.loc)
	default:
		return correction.ErrDateRequired
	}

	sh, err := s.resolveShift(ctx, req, date)
	if err != nil {
		return err
	}

	rec := attendance.Attendance{
		EmployeeID: req.EmployeeID,
		ShiftID:    sh.ID,
		Date:       date,
		Status:     attendance.StatusPresent,
		CheckIn:    s.local(req.NewCheckIn),
		CheckOut:   s.local(req.NewCheckOut),
	}

	// The stored side only validates the pair here. Upsert merges it again
	// under its own lock, so a concurrent check-in is never overwritten.
	existing, err := s.attendances.GetByKey(ctx, req.EmployeeID, date, sh.ID)
	if err != nil {
		return fmt.Errorf("failed to get attendance of day: %w", err)
	}
	pair := rec
	if existing != nil {
		if pair.CheckIn == nil {
			pair.CheckIn = s.local(existing.CheckIn)
		}
		if pair.CheckOut == nil {
			pair.CheckOut = s.local(existing.CheckOut)
		}
	}
	if err := s.recompute(&pair, sh); err != nil {
		return err
	}
	rec.LateMinutes = pair.LateMinutes
	rec.EarlyMinutes = pair.EarlyMinutes
	rec.WorkHours = attendance.WorkHours(rec.CheckIn, rec.CheckOut)

	if _, err := s.attendances.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

// resolveShift picks the shift for a correction without an attendance record:
// the requested shift, then the shift the employee already attended that day,
// then the configured fallback.
func (s *CorrectionServiceImpl) resolveShift(ctx context.Context, req correction.CorrectionRequest, date time.Time) (shift.Shift, error) {
	if req.ShiftID != nil {
		sh, err := s.shifts.GetByID(ctx, *req.ShiftID)
		if err != nil {
			if errors.Is(err, shift.ErrShiftNotFound) {
				return shift.Shift{}, shift.ErrShiftNotFound
			}
			return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
		}
		return sh, nil
	}

	day, err := s.attendances.ListByEmployeeDate(ctx, req.EmployeeID, date)
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to list attendance of day: %w", err)
	}
	if len(day) > 0 {
		sh, err := s.shifts.GetByID(ctx, day[0].ShiftID)
		if err != nil {
			return shift.Shift{}, fmt.Errorf("failed to get shift of attendance %s: %w", day[0].ID, err)
		}
		return sh, nil
	}

	if s.fallback != correction.FallbackFirstShift {
		return shift.Shift{}, correction.ErrShiftRequired
	}

	sh, err := s.shifts.FirstActive(ctx)
	if err != nil {
		if errors.Is(err, shift.ErrNoActiveShift) {
			return shift.Shift{}, correction.ErrShiftRequired
		}
		return shift.Shift{}, fmt.Errorf("failed to get fallback shift: %w", err)
	}

	s.logger.Warn("correction applied to fallback shift",
		zap.String("correction_id", req.ID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("shift_id", sh.ID),
		zap.String("date", attendance.DateString(date)),
	)
	return sh, nil
}

// recompute refreshes the derived fields of rec from its check times.
func (s *CorrectionServiceImpl) recompute(rec *attendance.Attendance, sh shift.Shift) error {
	if rec.CheckIn != nil && rec.CheckOut != nil && rec.CheckOut.Before(*rec.CheckIn) {
		return correction.ErrInvalidTimeRange
	}

	window, err := attendance.WindowFor(sh)
	if err != nil {
		return err
	}

	rec.LateMinutes = 0
	if rec.CheckIn != nil {
		rec.LateMinutes = attendance.LateMinutesFor(window, *rec.CheckIn)
	}
	rec.EarlyMinutes = 0
	if rec.CheckOut != nil {
		rec.EarlyMinutes = attendance.EarlyMinutesFor(window, *rec.CheckOut)
	}
	rec.WorkHours = attendance.WorkHours(rec.CheckIn, rec.CheckOut)
	return nil
}

// local copies t into the business location so wall-clock minutes line up with shift times.
func (s *CorrectionServiceImpl) local(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.In(s.loc)
	return &v
}

// Reject implements correction.CorrectionService.
func (s *CorrectionServiceImpl) Reject(ctx context.Context, id, reviewerID string, notes *string, now time.Time) (correction.CorrectionRequest, error) {
	if _, err := s.getPending(ctx, id); err != nil {
		return correction.CorrectionRequest{}, err
	}

	rejected, err := s.corrections.UpdateReview(ctx, id, correction.StatusRejected, reviewerID, notes, now)
	if err != nil {
		if errors.Is(err, correction.ErrInvalidState) {
			return correction.CorrectionRequest{}, correction.ErrInvalidState
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to reject correction request: %w", err)
	}

	s.logger.Info("correction request rejected",
		zap.String("correction_id", id),
		zap.String("reviewer_id", reviewerID),
	)

	return rejected, nil
}

// GetByID implements correction.CorrectionService.
func (s *CorrectionServiceImpl) GetByID(ctx context.Context, id string) (correction.CorrectionRequest, error) {
	req, err := s.corrections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, correction.ErrCorrectionNotFound) {
			return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	return req, nil
}

// ListMine implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListMine(ctx context.Context, employeeID string, filter correction.CorrectionFilter) ([]correction.CorrectionRequest, int64, error) {
	filter.EmployeeID = &employeeID
	filter.EmployeeName = nil
	return s.list(ctx, filter)
}

// ListAll implements correction.CorrectionService.
func (s *CorrectionServiceImpl) ListAll(ctx context.Context, filter correction.CorrectionFilter) ([]correction.CorrectionRequest, int64, error) {
	return s.list(ctx, filter)
}

func (s *CorrectionServiceImpl) list(ctx context.Context, filter correction.CorrectionFilter) ([]correction.CorrectionRequest, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	items, total, err := s.corrections.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list correction requests: %w", err)
	}
	return items, total, nil
}

func NewCorrectionService(
	correctionRepo correction.CorrectionRepository,
	attendanceRepo attendance.AttendanceRepository,
	shiftRepo shift.ShiftRepository,
	tx database.Transactor,
	fallback correction.ShiftFallback,
	loc *time.Location,
	logger *zap.Logger,
) correction.CorrectionService {
	if loc == nil {
		loc = time.UTC
	}
	return &CorrectionServiceImpl{
		corrections: correctionRepo,
		attendances: attendanceRepo,
		shifts:      shiftRepo,
		tx:          tx,
		fallback:    fallback,
		loc:         loc,
		logger:      logger.Named("correction"),
	}
}
