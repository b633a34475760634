package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/utils"
)

type correctionRepository struct {
	store *Store
}

func cloneCorrection(c correction.CorrectionRequest) correction.CorrectionRequest {
	c.AttendanceID = cloneString(c.AttendanceID)
	c.ShiftID = cloneString(c.ShiftID)
	c.RequestedDate = cloneTime(c.RequestedDate)
	c.NewCheckIn = cloneTime(c.NewCheckIn)
	c.NewCheckOut = cloneTime(c.NewCheckOut)
	c.ReviewedBy = cloneString(c.ReviewedBy)
	c.ReviewedAt = cloneTime(c.ReviewedAt)
	c.Notes = cloneString(c.Notes)
	c.EmployeeName = nil
	return c
}

func (r *correctionRepository) withName(c correction.CorrectionRequest) correction.CorrectionRequest {
	if name, ok := r.store.employees[c.EmployeeID]; ok {
		c.EmployeeName = &name
	}
	return c
}

func (r *correctionRepository) Create(ctx context.Context, req correction.CorrectionRequest) (correction.CorrectionRequest, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	id, err := newID()
	if err != nil {
		return correction.CorrectionRequest{}, err
	}
	now := r.store.now()

	req = cloneCorrection(req)
	req.ID = id
	req.Status = correction.StatusPending
	req.ReviewedBy = nil
	req.ReviewedAt = nil
	req.Notes = nil
	req.Deleted = false
	req.CreatedAt = now
	req.UpdatedAt = now
	r.store.touchCorrection(ctx, id)
	r.store.corrections[id] = req

	return cloneCorrection(req), nil
}

func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.CorrectionRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.corrections[id]
	if !ok || c.Deleted {
		return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
	}
	return r.withName(cloneCorrection(c)), nil
}

func (r *correctionRepository) UpdateReview(ctx context.Context, id string, status correction.Status, reviewerID string, notes *string, reviewedAt time.Time) (correction.CorrectionRequest, error) {
	defer r.store.lockWrite(ctx)()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.corrections[id]
	if !ok || c.Deleted || c.Status != correction.StatusPending {
		return correction.CorrectionRequest{}, correction.ErrInvalidState
	}

	c.Status = status
	c.ReviewedBy = &reviewerID
	c.ReviewedAt = &reviewedAt
	c.Notes = cloneString(notes)
	c.UpdatedAt = r.store.now()
	r.store.touchCorrection(ctx, id)
	r.store.corrections[id] = cloneCorrection(c)

	return cloneCorrection(c), nil
}

func (r *correctionRepository) List(ctx context.Context, filter correction.CorrectionFilter) ([]correction.CorrectionRequest, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := []correction.CorrectionRequest{}
	for _, c := range r.store.corrections {
		if c.Deleted {
			continue
		}
		if filter.EmployeeID != nil && c.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(c.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeName != nil && *filter.EmployeeName != "" {
			name := strings.ToLower(r.store.employees[c.EmployeeID])
			if !strings.Contains(name, strings.ToLower(*filter.EmployeeName)) {
				continue
			}
		}
		matched = append(matched, r.withName(cloneCorrection(c)))
	}

	// newest first; ids are time ordered so they break ties
	slices.SortFunc(matched, func(a, b correction.CorrectionRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	total := int64(len(matched))
	start := min(utils.Offset(filter.Page, filter.Limit), len(matched))
	end := min(start+filter.Limit, len(matched))

	return matched[start:end], total, nil
}
