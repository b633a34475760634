// Package memory keeps shifts, attendance records and correction requests
// in process memory. It mirrors the conditional write semantics of the
// postgres repositories and backs the service tests and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/google/uuid"
)

type Store struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	shifts      map[string]shift.Shift
	attendances map[string]attendance.Attendance
	corrections map[string]correction.CorrectionRequest
	employees   map[string]string
	now         func() time.Time
}

func NewStore() *Store {
	return &Store{
		shifts:      map[string]shift.Shift{},
		attendances: map[string]attendance.Attendance{},
		corrections: map[string]correction.CorrectionRequest{},
		employees:   map[string]string{},
		now:         time.Now,
	}
}

// AddEmployee registers a display name used by list views.
func (s *Store) AddEmployee(id, fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id] = fullName
}

func (s *Store) Shifts() shift.ShiftRepository {
	return &shiftRepository{store: s}
}

func (s *Store) Attendances() attendance.AttendanceRepository {
	return &attendanceRepository{store: s}
}

func (s *Store) Corrections() correction.CorrectionRepository {
	return &correctionRepository{store: s}
}

type txKey struct{}

// undoLog holds the value each row had before the transaction first wrote
// it. A nil entry marks a row the transaction created.
type undoLog struct {
	shifts      map[string]*shift.Shift
	attendances map[string]*attendance.Attendance
	corrections map[string]*correction.CorrectionRequest
}

func undoFrom(ctx context.Context) *undoLog {
	u, _ := ctx.Value(txKey{}).(*undoLog)
	return u
}

// remember records the current value of table[id] the first time the
// transaction touches it. Callers hold s.mu.
func remember[V any](log map[string]*V, table map[string]V, id string) {
	if _, seen := log[id]; seen {
		return
	}
	if v, ok := table[id]; ok {
		log[id] = &v
		return
	}
	log[id] = nil
}

func restore[V any](log map[string]*V, table map[string]V) {
	for id, v := range log {
		if v == nil {
			delete(table, id)
			continue
		}
		table[id] = *v
	}
}

func (s *Store) touchShift(ctx context.Context, id string) {
	if u := undoFrom(ctx); u != nil {
		remember(u.shifts, s.shifts, id)
	}
}

func (s *Store) touchAttendance(ctx context.Context, id string) {
	if u := undoFrom(ctx); u != nil {
		remember(u.attendances, s.attendances, id)
	}
}

func (s *Store) touchCorrection(ctx context.Context, id string) {
	if u := undoFrom(ctx); u != nil {
		remember(u.corrections, s.corrections, id)
	}
}

// lockWrite orders a write made outside a transaction after any running
// one, so a rollback never hides it. Writes inside the transaction already
// hold the lock.
func (s *Store) lockWrite(ctx context.Context) func() {
	if undoFrom(ctx) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// WithinTransaction serialises transactions. When fn fails only the rows fn
// wrote are put back.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if undoFrom(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := &undoLog{
		shifts:      map[string]*shift.Shift{},
		attendances: map[string]*attendance.Attendance{},
		corrections: map[string]*correction.CorrectionRequest{},
	}

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			restore(undo.shifts, s.shifts)
			restore(undo.attendances, s.attendances)
			restore(undo.corrections, s.corrections)
			s.mu.Unlock()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, undo)); err != nil {
		return err
	}
	committed = true

	return nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
