package correction

import (
	"context"
	"time"
)

type CorrectionService interface {
	CreateRequest(ctx context.Context, employeeID string, req CreateCorrectionRequest) (CorrectionRequest, error)

	// Approve applies the requested times to the attendance record and marks
	// the request approved, atomically.
	Approve(ctx context.Context, id, reviewerID string, notes *string, now time.Time) (CorrectionRequest, error)
	Reject(ctx context.Context, id, reviewerID string, notes *string, now time.Time) (CorrectionRequest, error)

	GetByID(ctx context.Context, id string) (CorrectionRequest, error)
	ListMine(ctx context.Context, employeeID string, filter CorrectionFilter) ([]CorrectionRequest, int64, error)
	ListAll(ctx context.Context, filter CorrectionFilter) ([]CorrectionRequest, int64, error)
}
