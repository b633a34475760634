package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	a.id, a.employee_id, a.shift_id, a.date, a.check_in, a.check_out, a.status,
	a.late_minutes, a.early_minutes, a.work_hours, a.deleted, a.created_at, a.updated_at`

// Postgres returns DATE as midnight UTC; re-anchor at noon so DateString is stable.
func anchorDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC)
}

// workHoursSQL mirrors attendance.WorkHours for a check-in/check-out pair of SQL expressions.
func workHoursSQL(in, out string) string {
	return fmt.Sprintf(`CASE WHEN %[1]s IS NOT NULL AND %[2]s IS NOT NULL
		THEN ROUND((EXTRACT(EPOCH FROM (%[2]s - %[1]s)) / 3600)::numeric, 2) END`, in, out)
}

func scanAttendance(row pgx.Row, extra ...any) (attendance.Attendance, error) {
	var a attendance.Attendance
	var status string
	dest := []any{
		&a.ID, &a.EmployeeID, &a.ShiftID, &a.Date, &a.CheckIn, &a.CheckOut, &status,
		&a.LateMinutes, &a.EarlyMinutes, &a.WorkHours, &a.Deleted, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return attendance.Attendance{}, err
	}
	a.Status = attendance.Status(status)
	a.Date = anchorDate(a.Date)
	return a, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}
	return records, nil
}

// UpsertCheckIn implements attendance.AttendanceRepository.
func (r *attendanceRepository) UpsertCheckIn(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	// The WHERE on DO UPDATE turns a live check-in into "no row returned".
	// A stored check-out survives when it is not before the new check-in.
	query := strings.NewReplacer(
		"{out}", `CASE WHEN NOT a.deleted AND a.check_out >= EXCLUDED.check_in THEN a.check_out END`,
	).Replace(`
		INSERT INTO attendances AS a (
			id, employee_id, shift_id, date, check_in, check_out, status,
			late_minutes, early_minutes, work_hours
		) VALUES ($1, $2, $3, $4::date, $5, NULL, $6, $7, 0, NULL)
		ON CONFLICT ON CONSTRAINT attendances_employee_date_shift_key DO UPDATE
		SET check_in = EXCLUDED.check_in,
			check_out = {out},
			status = EXCLUDED.status,
			late_minutes = EXCLUDED.late_minutes,
			early_minutes = CASE WHEN {out} IS NULL THEN 0 ELSE a.early_minutes END,
			work_hours = ` + workHoursSQL("EXCLUDED.check_in", "{out}") + `,
			deleted = FALSE,
			updated_at = NOW()
		WHERE a.check_in IS NULL OR a.deleted
		RETURNING ` + attendanceColumns)

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(), a.EmployeeID, a.ShiftID, attendance.DateString(a.Date), a.CheckIn,
		string(a.Status), a.LateMinutes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to upsert check-in: %w", err)
	}

	return saved, nil
}

// RecordCheckOut implements attendance.AttendanceRepository.
func (r *attendanceRepository) RecordCheckOut(ctx context.Context, id string, checkOut time.Time, earlyMinutes int, workHours *float64) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances AS a
		SET check_out = $2, early_minutes = $3, work_hours = $4, updated_at = NOW()
		WHERE a.id = $1 AND a.check_out IS NULL AND a.deleted = FALSE
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query, id, checkOut, earlyMinutes, workHours))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.Attendance{}, fmt.Errorf("failed to record check-out: %w", err)
	}

	return saved, nil
}

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepository) Upsert(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	// Written sides win. A stored side is kept while it is ordered with the
	// written one; values of a soft-deleted row are never carried over.
	query := strings.NewReplacer(
		"{in}", `COALESCE(EXCLUDED.check_in, CASE WHEN NOT a.deleted AND (EXCLUDED.check_out IS NULL OR a.check_in <= EXCLUDED.check_out) THEN a.check_in END)`,
		"{out}", `COALESCE(EXCLUDED.check_out, CASE WHEN NOT a.deleted AND (EXCLUDED.check_in IS NULL OR a.check_out >= EXCLUDED.check_in) THEN a.check_out END)`,
	).Replace(`
		INSERT INTO attendances AS a (
			id, employee_id, shift_id, date, check_in, check_out, status,
			late_minutes, early_minutes, work_hours
		) VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT attendances_employee_date_shift_key DO UPDATE
		SET check_in = {in},
			check_out = {out},
			status = EXCLUDED.status,
			late_minutes = CASE
				WHEN EXCLUDED.check_in IS NOT NULL THEN EXCLUDED.late_minutes
				WHEN {in} IS NULL THEN 0
				ELSE a.late_minutes END,
			early_minutes = CASE
				WHEN EXCLUDED.check_out IS NOT NULL THEN EXCLUDED.early_minutes
				WHEN {out} IS NULL THEN 0
				ELSE a.early_minutes END,
			work_hours = ` + workHoursSQL("{in}", "{out}") + `,
			deleted = FALSE,
			updated_at = NOW()
		RETURNING ` + attendanceColumns)

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(), a.EmployeeID, a.ShiftID, attendance.DateString(a.Date), a.CheckIn, a.CheckOut,
		string(a.Status), a.LateMinutes, a.EarlyMinutes, a.WorkHours,
	))
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to upsert attendance: %w", err)
	}

	return saved, nil
}

// GetByKey implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByKey(ctx context.Context, employeeID string, date time.Time, shiftID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2::date AND a.shift_id = $3 AND a.deleted = FALSE
	`

	a, err := scanAttendance(q.QueryRow(ctx, query, employeeID, attendance.DateString(date), shiftID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by key: %w", err)
	}

	return &a, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances a WHERE a.id = $1 AND a.deleted = FALSE`
	// Inside a transaction the row stays locked until commit, so a
	// concurrent check-out waits instead of being overwritten by Update.
	if inTransaction(ctx) {
		query += ` FOR UPDATE`
	}

	a, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return a, nil
}

// ListByEmployeeDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByEmployeeDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2::date AND a.deleted = FALSE
		ORDER BY a.check_in DESC NULLS LAST, a.created_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID, attendance.DateString(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances of day: %w", err)
	}

	return collectAttendances(rows)
}

// ListByRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date >= $2::date AND a.date <= $3::date AND a.deleted = FALSE
		ORDER BY a.date DESC, a.check_in DESC NULLS LAST
	`

	rows, err := q.Query(ctx, query, employeeID, attendance.DateString(from), attendance.DateString(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances by range: %w", err)
	}

	return collectAttendances(rows)
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"a.deleted = FALSE"}
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.FromDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d::date", argIdx))
		args = append(args, *filter.FromDate)
		argIdx++
	}
	if filter.ToDate != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d::date", argIdx))
		args = append(args, *filter.ToDate)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM attendances a WHERE ` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, e.full_name, s.name
		FROM attendances a
		LEFT JOIN employees e ON e.id = a.employee_id
		LEFT JOIN shifts s ON s.id = a.shift_id
		WHERE %s
		ORDER BY a.date DESC, a.check_in DESC NULLS LAST
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, utils.Offset(filter.Page, filter.Limit))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	records := []attendance.Attendance{}
	for rows.Next() {
		var employeeName, shiftName *string
		a, err := scanAttendance(rows, &employeeName, &shiftName)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		a.EmployeeName = employeeName
		a.ShiftName = shiftName
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, total, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances AS a
		SET check_in = $2, check_out = $3, status = $4, late_minutes = $5,
			early_minutes = $6, work_hours = $7, updated_at = NOW()
		WHERE a.id = $1 AND a.deleted = FALSE
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		a.ID, a.CheckIn, a.CheckOut, string(a.Status), a.LateMinutes, a.EarlyMinutes, a.WorkHours,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return saved, nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
