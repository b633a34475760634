package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type correctionRepository struct {
	db *database.DB
}

const correctionColumns = `
	c.id, c.employee_id, c.attendance_id, c.shift_id, c.request_type, c.reason,
	c.requested_date, c.new_check_in, c.new_check_out, c.status,
	c.reviewed_by, c.reviewed_at, c.notes, c.deleted, c.created_at, c.updated_at`

func scanCorrection(row pgx.Row, extra ...any) (correction.CorrectionRequest, error) {
	var c correction.CorrectionRequest
	var requestType, status string
	dest := []any{
		&c.ID, &c.EmployeeID, &c.AttendanceID, &c.ShiftID, &requestType, &c.Reason,
		&c.RequestedDate, &c.NewCheckIn, &c.NewCheckOut, &status,
		&c.ReviewedBy, &c.ReviewedAt, &c.Notes, &c.Deleted, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return correction.CorrectionRequest{}, err
	}
	c.RequestType = correction.RequestType(requestType)
	c.Status = correction.Status(status)
	if c.RequestedDate != nil {
		d := anchorDate(*c.RequestedDate)
		c.RequestedDate = &d
	}
	return c, nil
}

// Create implements correction.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, req correction.CorrectionRequest) (correction.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to generate correction id: %w", err)
	}

	var requestedDate *string
	if req.RequestedDate != nil {
		d := attendance.DateString(*req.RequestedDate)
		requestedDate = &d
	}

	query := `
		INSERT INTO attendance_correction_requests AS c (
			id, employee_id, attendance_id, shift_id, request_type, reason,
			requested_date, new_check_in, new_check_out, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8, $9, $10)
		RETURNING ` + correctionColumns

	created, err := scanCorrection(q.QueryRow(ctx, query,
		id.String(), req.EmployeeID, req.AttendanceID, req.ShiftID, string(req.RequestType), req.Reason,
		requestedDate, req.NewCheckIn, req.NewCheckOut, string(correction.StatusPending),
	))
	if err != nil {
		return correction.CorrectionRequest{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	return created, nil
}

// GetByID implements correction.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (correction.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + correctionColumns + `, e.full_name
		FROM attendance_correction_requests c
		LEFT JOIN employees e ON e.id = c.employee_id
		WHERE c.id = $1 AND c.deleted = FALSE
	`

	var employeeName *string
	c, err := scanCorrection(q.QueryRow(ctx, query, id), &employeeName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.CorrectionRequest{}, correction.ErrCorrectionNotFound
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to get correction request: %w", err)
	}
	c.EmployeeName = employeeName

	return c, nil
}

// UpdateReview implements correction.CorrectionRepository.
func (r *correctionRepository) UpdateReview(ctx context.Context, id string, status correction.Status, reviewerID string, notes *string, reviewedAt time.Time) (correction.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_correction_requests AS c
		SET status = $2, reviewed_by = $3, notes = $4, reviewed_at = $5, updated_at = NOW()
		WHERE c.id = $1 AND c.status = 'pending' AND c.deleted = FALSE
		RETURNING ` + correctionColumns

	updated, err := scanCorrection(q.QueryRow(ctx, query, id, string(status), reviewerID, notes, reviewedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.CorrectionRequest{}, correction.ErrInvalidState
		}
		return correction.CorrectionRequest{}, fmt.Errorf("failed to review correction request: %w", err)
	}

	return updated, nil
}

// List implements correction.CorrectionRepository.
func (r *correctionRepository) List(ctx context.Context, filter correction.CorrectionFilter) ([]correction.CorrectionRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"c.deleted = FALSE"}
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("c.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("c.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		conditions = append(conditions, fmt.Sprintf("e.full_name ILIKE $%d", argIdx))
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")
	from := `
		FROM attendance_correction_requests c
		LEFT JOIN employees e ON e.id = c.employee_id
		WHERE ` + where

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count correction requests: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, e.full_name
		%s
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $%d OFFSET $%d
	`, correctionColumns, from, argIdx, argIdx+1)
	args = append(args, filter.Limit, utils.Offset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list correction requests: %w", err)
	}
	defer rows.Close()

	items := []correction.CorrectionRequest{}
	for rows.Next() {
		var employeeName *string
		c, err := scanCorrection(rows, &employeeName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan correction request: %w", err)
		}
		c.EmployeeName = employeeName
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate correction requests: %w", err)
	}

	return items, total, nil
}

func NewCorrectionRepository(db *database.DB) correction.CorrectionRepository {
	return &correctionRepository{db: db}
}
