package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db database.Querier
}

func NewAttendanceRepository(db database.Querier) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, date, shift_template_id, ts_in, ts_out, break_minutes,
		work_minutes, late_minutes, early_minutes, overtime_minutes,
		status, is_valid, approved_by, approved_at, on_leave, canceled_by_leave, raw_payload,
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.Date, &a.ShiftTemplateID, &a.TsIn, &a.TsOut, &a.BreakMinutes,
		&a.WorkMinutes, &a.LateMinutes, &a.EarlyMinutes, &a.OvertimeMinutes,
		&a.Status, &a.IsValid, &a.ApprovedBy, &a.ApprovedAt, &a.OnLeave, &a.CanceledByLeave, &a.RawPayload,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func collectAttendance(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()
	var out []attendance.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (
			employee_id, date, shift_template_id, ts_in, ts_out, break_minutes,
			work_minutes, late_minutes, early_minutes, overtime_minutes,
			status, is_valid, raw_payload
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		a.EmployeeID, a.Date, a.ShiftTemplateID, a.TsIn, a.TsOut, a.BreakMinutes,
		a.WorkMinutes, a.LateMinutes, a.EarlyMinutes, a.OvertimeMinutes,
		a.Status, a.IsValid, a.RawPayload,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, translatePgError(fmt.Errorf("failed to create attendance: %w", err))
	}

	return a, nil
}

// CreateBatch implements attendance.AttendanceRepository. The caller owns
// the transaction that makes the batch atomic.
func (r *attendanceRepository) CreateBatch(ctx context.Context, items []attendance.Attendance) ([]attendance.Attendance, error) {
	out := make([]attendance.Attendance, 0, len(items))
	for i, a := range items {
		created, err := r.Create(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, created)
	}
	return out, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	a, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, translatePgError(fmt.Errorf("failed to get attendance: %w", err))
	}
	return a, nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.EmployeeID != nil {
		add("employee_id = $%d", *filter.EmployeeID)
	}
	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + attendanceColumns + ` FROM attendances`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY date DESC, employee_id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to list attendance: %w", err))
	}
	return collectAttendance(rows)
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances SET
			shift_template_id = $2, ts_in = $3, ts_out = $4, break_minutes = $5,
			work_minutes = $6, late_minutes = $7, early_minutes = $8, overtime_minutes = $9,
			status = $10, is_valid = $11, approved_by = $12, approved_at = $13,
			on_leave = $14, canceled_by_leave = $15, raw_payload = $16, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		a.ID, a.ShiftTemplateID, a.TsIn, a.TsOut, a.BreakMinutes,
		a.WorkMinutes, a.LateMinutes, a.EarlyMinutes, a.OvertimeMinutes,
		a.Status, a.IsValid, a.ApprovedBy, a.ApprovedAt,
		a.OnLeave, a.CanceledByLeave, a.RawPayload,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, translatePgError(fmt.Errorf("failed to update attendance: %w", err))
	}
	return a, nil
}

// LockByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) LockByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return attendance.Attendance{}, err
	}
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1 FOR UPDATE`

	a, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, translatePgError(fmt.Errorf("failed to lock attendance: %w", err))
	}
	return a, nil
}

// LockByEmployeeDateRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) LockByEmployeeDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY id
		FOR UPDATE`
	return r.lockMany(ctx, query, employeeID, from, to)
}

// LockByLeave implements attendance.AttendanceRepository.
func (r *attendanceRepository) LockByLeave(ctx context.Context, leaveID string) ([]attendance.Attendance, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE on_leave = $1
		ORDER BY id
		FOR UPDATE`
	return r.lockMany(ctx, query, leaveID)
}

// lockMany locks rows in id order so concurrent range locks cannot deadlock.
func (r *attendanceRepository) lockMany(ctx context.Context, query string, args ...any) ([]attendance.Attendance, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to lock attendance rows: %w", err))
	}
	out, err := collectAttendance(rows)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to lock attendance rows: %w", err))
	}
	return out, nil
}
