package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type shiftRepository struct {
	db *database.DB
}

const shiftColumns = `
	id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	early_check_in_minutes, late_checkout_minutes, deleted, created_at, updated_at`

func scanShift(row pgx.Row) (shift.Shift, error) {
	var s shift.Shift
	err := row.Scan(
		&s.ID, &s.Name, &s.StartTime, &s.EndTime,
		&s.EarlyCheckInMinutes, &s.LateCheckoutMinutes, &s.Deleted, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create implements shift.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	query := `
		INSERT INTO shifts (id, name, start_time, end_time, early_check_in_minutes, late_checkout_minutes)
		VALUES ($1, $2, $3::time, $4::time, $5, $6)
		RETURNING ` + shiftColumns

	created, err := scanShift(q.QueryRow(ctx, query,
		id.String(), s.Name, s.StartTime, s.EndTime, s.EarlyCheckInMinutes, s.LateCheckoutMinutes,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to create shift: %w", err)
	}

	return created, nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	s, err := scanShift(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return s, nil
}

// List implements shift.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, includeDeleted bool) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE ($1 OR deleted = FALSE)
		ORDER BY start_time ASC, name ASC
	`

	rows, err := q.Query(ctx, query, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	shifts := []shift.Shift{}
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	return shifts, nil
}

// FirstActive implements shift.ShiftRepository.
func (r *shiftRepository) FirstActive(ctx context.Context) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE deleted = FALSE
		ORDER BY start_time ASC, name ASC
		LIMIT 1
	`

	s, err := scanShift(q.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrNoActiveShift
		}
		return shift.Shift{}, fmt.Errorf("failed to get first active shift: %w", err)
	}

	return s, nil
}

// Update implements shift.ShiftRepository.
func (r *shiftRepository) Update(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shifts
		SET name = $2, start_time = $3::time, end_time = $4::time,
			early_check_in_minutes = $5, late_checkout_minutes = $6, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
		RETURNING ` + shiftColumns

	updated, err := scanShift(q.QueryRow(ctx, query,
		s.ID, s.Name, s.StartTime, s.EndTime, s.EarlyCheckInMinutes, s.LateCheckoutMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		if isUniqueViolation(err) {
			return shift.Shift{}, shift.ErrShiftNameExists
		}
		return shift.Shift{}, fmt.Errorf("failed to update shift: %w", err)
	}

	return updated, nil
}

// SoftDelete implements shift.ShiftRepository.
func (r *shiftRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE shifts SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}

	return nil
}

// UpsertByName implements shift.ShiftRepository.
func (r *shiftRepository) UpsertByName(ctx context.Context, s shift.Shift) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to generate shift id: %w", err)
	}

	query := `
		INSERT INTO shifts (id, name, start_time, end_time, early_check_in_minutes, late_checkout_minutes)
		VALUES ($1, $2, $3::time, $4::time, $5, $6)
		ON CONFLICT (name) WHERE deleted = FALSE DO UPDATE
		SET start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			early_check_in_minutes = EXCLUDED.early_check_in_minutes,
			late_checkout_minutes = EXCLUDED.late_checkout_minutes,
			updated_at = NOW()
		RETURNING ` + shiftColumns

	saved, err := scanShift(q.QueryRow(ctx, query,
		id.String(), s.Name, s.StartTime, s.EndTime, s.EarlyCheckInMinutes, s.LateCheckoutMinutes,
	))
	if err != nil {
		return shift.Shift{}, fmt.Errorf("failed to upsert shift %q: %w", s.Name, err)
	}

	return saved, nil
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepository{db: db}
}
