package shift

import "context"

type ShiftService interface {
	Create(ctx context.Context, req CreateShiftRequest) (Shift, error)
	GetByID(ctx context.Context, id string) (Shift, error)
	List(ctx context.Context, includeDeleted bool) ([]Shift, error)
	Update(ctx context.Context, req UpdateShiftRequest) (Shift, error)
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, defs []CreateShiftRequest) ([]Shift, error)
}
