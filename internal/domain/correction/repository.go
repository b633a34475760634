package correction

import (
	"context"
	"time"
)

type CorrectionRepository interface {
	Create(ctx context.Context, req CorrectionRequest) (CorrectionRequest, error)
	GetByID(ctx context.Context, id string) (CorrectionRequest, error)

	// UpdateReview moves a pending request to status. ErrInvalidState when it
	// is no longer pending, so two reviewers cannot both decide it.
	UpdateReview(ctx context.Context, id string, status Status, reviewerID string, notes *string, reviewedAt time.Time) (CorrectionRequest, error)

	// List is ordered by creation time, newest first.
	List(ctx context.Context, filter CorrectionFilter) ([]CorrectionRequest, int64, error)
}
