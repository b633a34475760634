package shift

import "context"

type ShiftRepository interface {
	Create(ctx context.Context, s Shift) (Shift, error)

	// GetByID returns soft-deleted shifts too; callers decide whether Deleted matters.
	GetByID(ctx context.Context, id string) (Shift, error)

	// List is ordered by start time, then name.
	List(ctx context.Context, includeDeleted bool) ([]Shift, error)

	// FirstActive returns the earliest-starting non-deleted shift, or ErrNoActiveShift.
	FirstActive(ctx context.Context) (Shift, error)

	Update(ctx context.Context, s Shift) (Shift, error)
	SoftDelete(ctx context.Context, id string) error

	// UpsertByName creates the shift or updates the active shift with the same name.
	UpsertByName(ctx context.Context, s Shift) (Shift, error)
}
