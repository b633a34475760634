package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
)

type shiftRepository struct {
	store *Store
}

// shifts are ordered like the SQL ORDER BY start_time, name
func compareShifts(a, b shift.Shift) int {
	am, _ := shift.ParseClock(a.StartTime)
	bm, _ := shift.ParseClock(b.StartTime)
	return cmp.Or(cmp.Compare(am, bm), cmp.Compare(a.Name, b.Name))
}

func (r *shiftRepository) nameTaken(name, exceptID string) bool {
	for _, s := range r.store.shifts {
		if !s.Deleted && s.Name == name && s.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *shiftRepository) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.createLocked(ctx, s)
}

func (r *shiftRepository) createLocked(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	if r.nameTaken(s.Name, "") {
		return shift.Shift{}, shift.ErrShiftNameExists
	}

	id, err := newID()
	if err != nil {
		return shift.Shift{}, err
	}
	now := r.store.now()
	s.ID = id
	s.Deleted = false
	s.CreatedAt = now
	s.UpdatedAt = now
	r.store.touchShift(ctx, id)
	r.store.shifts[id] = s

	return s, nil
}

func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.shifts[id]
	if !ok {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	return s, nil
}

func (r *shiftRepository) List(ctx context.Context, includeDeleted bool) ([]shift.Shift, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := []shift.Shift{}
	for _, s := range r.store.shifts {
		if includeDeleted || !s.Deleted {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, compareShifts)
	return out, nil
}

func (r *shiftRepository) FirstActive(ctx context.Context) (shift.Shift, error) {
	active, err := r.List(ctx, false)
	if err != nil {
		return shift.Shift{}, err
	}
	if len(active) == 0 {
		return shift.Shift{}, shift.ErrNoActiveShift
	}
	return active[0], nil
}

func (r *shiftRepository) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.updateLocked(ctx, s)
}

func (r *shiftRepository) updateLocked(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	existing, ok := r.store.shifts[s.ID]
	if !ok || existing.Deleted {
		return shift.Shift{}, shift.ErrShiftNotFound
	}
	if r.nameTaken(s.Name, s.ID) {
		return shift.Shift{}, shift.ErrShiftNameExists
	}

	existing.Name = s.Name
	existing.StartTime = s.StartTime
	existing.EndTime = s.EndTime
	existing.EarlyCheckInMinutes = s.EarlyCheckInMinutes
	existing.LateCheckoutMinutes = s.LateCheckoutMinutes
	existing.UpdatedAt = r.store.now()
	r.store.touchShift(ctx, s.ID)
	r.store.shifts[s.ID] = existing

	return existing, nil
}

func (r *shiftRepository) SoftDelete(ctx context.Context, id string) error {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.shifts[id]
	if !ok || existing.Deleted {
		return shift.ErrShiftNotFound
	}
	existing.Deleted = true
	existing.UpdatedAt = r.store.now()
	r.store.touchShift(ctx, id)
	r.store.shifts[id] = existing

	return nil
}

func (r *shiftRepository) UpsertByName(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.shifts {
		if !existing.Deleted && existing.Name == s.Name {
			s.ID = existing.ID
			return r.updateLocked(ctx, s)
		}
	}
	return r.createLocked(ctx, s)
}
