package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/utils"
)

type attendanceRepository struct {
	store *Store
}

func cloneAttendance(a attendance.Attendance) attendance.Attendance {
	a.CheckIn = cloneTime(a.CheckIn)
	a.CheckOut = cloneTime(a.CheckOut)
	a.WorkHours = cloneFloat(a.WorkHours)
	a.EmployeeName = nil
	a.ShiftName = nil
	return a
}

// newest date first, then latest check-in, records without check-in last
func compareAttendances(a, b attendance.Attendance) int {
	if c := cmp.Compare(attendance.DateString(b.Date), attendance.DateString(a.Date)); c != 0 {
		return c
	}
	switch {
	case a.CheckIn == nil && b.CheckIn == nil:
		return b.CreatedAt.Compare(a.CreatedAt)
	case a.CheckIn == nil:
		return 1
	case b.CheckIn == nil:
		return -1
	}
	return b.CheckIn.Compare(*a.CheckIn)
}

func (r *attendanceRepository) findByKey(employeeID string, date time.Time, shiftID string) (attendance.Attendance, bool) {
	day := attendance.DateString(date)
	for _, a := range r.store.attendances {
		if a.EmployeeID == employeeID && a.ShiftID == shiftID && attendance.DateString(a.Date) == day {
			return a, true
		}
	}
	return attendance.Attendance{}, false
}

func (r *attendanceRepository) UpsertCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, found := r.findByKey(a.EmployeeID, a.Date, a.ShiftID)
	live := found && !existing.Deleted
	if live && existing.CheckIn != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
	}

	a.CheckOut = nil
	a.EarlyMinutes = 0
	if live && existing.CheckOut != nil && a.CheckIn != nil && !existing.CheckOut.Before(*a.CheckIn) {
		a.CheckOut = existing.CheckOut
		a.EarlyMinutes = existing.EarlyMinutes
	}
	a.WorkHours = attendance.WorkHours(a.CheckIn, a.CheckOut)

	return r.saveLocked(ctx, a, existing, found)
}

func (r *attendanceRepository) saveLocked(ctx context.Context, a attendance.Attendance, existing attendance.Attendance, found bool) (attendance.Attendance, error) {
	now := r.store.now()
	a = cloneAttendance(a)
	if found {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		id, err := newID()
		if err != nil {
			return attendance.Attendance{}, err
		}
		a.ID = id
		a.CreatedAt = now
	}
	a.Deleted = false
	a.UpdatedAt = now
	r.store.touchAttendance(ctx, a.ID)
	r.store.attendances[a.ID] = a
	return cloneAttendance(a), nil
}

func (r *attendanceRepository) RecordCheckOut(ctx context.Context, id string, checkOut time.Time, earlyMinutes int, workHours *float64) (attendance.Attendance, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.attendances[id]
	if !ok || a.Deleted || a.CheckOut != nil {
		return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
	}

	a.CheckOut = &checkOut
	a.EarlyMinutes = earlyMinutes
	a.WorkHours = cloneFloat(workHours)
	a.UpdatedAt = r.store.now()
	r.store.touchAttendance(ctx, id)
	r.store.attendances[id] = cloneAttendance(a)

	return cloneAttendance(a), nil
}

func (r *attendanceRepository) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, found := r.findByKey(a.EmployeeID, a.Date, a.ShiftID)
	if found && !existing.Deleted {
		// Written sides win; a stored side stays only while the pair is ordered.
		in, out := a.CheckIn, a.CheckOut
		if in == nil && existing.CheckIn != nil && (out == nil || !out.Before(*existing.CheckIn)) {
			a.CheckIn = existing.CheckIn
			a.LateMinutes = existing.LateMinutes
		}
		if out == nil && existing.CheckOut != nil && (in == nil || !existing.CheckOut.Before(*in)) {
			a.CheckOut = existing.CheckOut
			a.EarlyMinutes = existing.EarlyMinutes
		}
	}
	if a.CheckIn == nil {
		a.LateMinutes = 0
	}
	if a.CheckOut == nil {
		a.EarlyMinutes = 0
	}
	a.WorkHours = attendance.WorkHours(a.CheckIn, a.CheckOut)

	return r.saveLocked(ctx, a, existing, found)
}

func (r *attendanceRepository) GetByKey(ctx context.Context, employeeID string, date time.Time, shiftID string) (*attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, found := r.findByKey(employeeID, date, shiftID)
	if !found || a.Deleted {
		return nil, nil
	}
	a = cloneAttendance(a)
	return &a, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	a, ok := r.store.attendances[id]
	if !ok || a.Deleted {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return cloneAttendance(a), nil
}

func (r *attendanceRepository) collect(match func(a attendance.Attendance) bool) []attendance.Attendance {
	out := []attendance.Attendance{}
	for _, a := range r.store.attendances {
		if !a.Deleted && match(a) {
			out = append(out, cloneAttendance(a))
		}
	}
	slices.SortFunc(out, compareAttendances)
	return out
}

func (r *attendanceRepository) ListByEmployeeDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	day := attendance.DateString(date)
	return r.collect(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && attendance.DateString(a.Date) == day
	}), nil
}

func (r *attendanceRepository) ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lo, hi := attendance.DateString(from), attendance.DateString(to)
	return r.collect(func(a attendance.Attendance) bool {
		day := attendance.DateString(a.Date)
		return a.EmployeeID == employeeID && day >= lo && day <= hi
	}), nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := r.collect(func(a attendance.Attendance) bool {
		day := attendance.DateString(a.Date)
		switch {
		case filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID:
			return false
		case filter.Status != nil && string(a.Status) != *filter.Status:
			return false
		case filter.FromDate != nil && day < *filter.FromDate:
			return false
		case filter.ToDate != nil && day > *filter.ToDate:
			return false
		}
		return true
	})

	total := int64(len(matched))
	start := min(utils.Offset(filter.Page, filter.Limit), len(matched))
	end := min(start+filter.Limit, len(matched))
	page := matched[start:end]

	for i := range page {
		if name, ok := r.store.employees[page[i].EmployeeID]; ok {
			page[i].EmployeeName = &name
		}
		if s, ok := r.store.shifts[page[i].ShiftID]; ok {
			shiftName := s.Name
			page[i].ShiftName = &shiftName
		}
	}

	return page, total, nil
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.attendances[a.ID]
	if !ok || existing.Deleted {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	existing.CheckIn = cloneTime(a.CheckIn)
	existing.CheckOut = cloneTime(a.CheckOut)
	existing.Status = a.Status
	existing.LateMinutes = a.LateMinutes
	existing.EarlyMinutes = a.EarlyMinutes
	existing.WorkHours = cloneFloat(a.WorkHours)
	existing.UpdatedAt = r.store.now()
	r.store.touchAttendance(ctx, a.ID)
	r.store.attendances[a.ID] = existing

	return cloneAttendance(existing), nil
}
