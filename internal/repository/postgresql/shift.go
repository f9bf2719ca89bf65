package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type shiftRepository struct {
	db database.Querier
}

func NewShiftRepository(db database.Querier) shift.ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `id, code, name, start_time, end_time, break_minutes, overnight, pay_factor,
		created_at, updated_at, deleted_at`

func scanShift(row rowScanner) (shift.Template, error) {
	var (
		t          shift.Template
		start, end pgtype.Time
	)
	err := row.Scan(
		&t.ID, &t.Code, &t.Name, &start, &end, &t.BreakMinutes, &t.Overnight, &t.PayFactor,
		&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	)
	if err != nil {
		return shift.Template{}, err
	}
	t.StartTime = shift.TimeOfDayFromMicroseconds(start.Microseconds)
	t.EndTime = shift.TimeOfDayFromMicroseconds(end.Microseconds)
	return t, nil
}

func pgTime(t shift.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

// Create implements shift.ShiftRepository.
func (r *shiftRepository) Create(ctx context.Context, t shift.Template) (shift.Template, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_templates (code, name, start_time, end_time, break_minutes, overnight, pay_factor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		t.Code, t.Name, pgTime(t.StartTime), pgTime(t.EndTime), t.BreakMinutes, t.Overnight, t.PayFactor,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shift.Template{}, fmt.Errorf("%w: %s", shift.ErrShiftCodeExists, t.Code)
		}
		return shift.Template{}, translatePgError(fmt.Errorf("failed to create shift template: %w", err))
	}
	t.DeletedAt = nil
	return t, nil
}

func (r *shiftRepository) getOne(ctx context.Context, q database.Querier, query string, args ...any) (shift.Template, error) {
	t, err := scanShift(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Template{}, shift.ErrShiftNotFound
		}
		return shift.Template{}, translatePgError(fmt.Errorf("failed to get shift template: %w", err))
	}
	return t, nil
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string) (shift.Template, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_templates WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, GetQuerier(ctx, r.db), query, id)
}

// GetSnapshot implements shift.ShiftRepository.
func (r *shiftRepository) GetSnapshot(ctx context.Context, id string) (shift.Template, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_templates WHERE id = $1`
	return r.getOne(ctx, GetQuerier(ctx, r.db), query, id)
}

// GetByCode implements shift.ShiftRepository.
func (r *shiftRepository) GetByCode(ctx context.Context, code string) (shift.Template, error) {
	query := `SELECT ` + shiftColumns + ` FROM shift_templates WHERE code = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, GetQuerier(ctx, r.db), query, code)
}

// List implements shift.ShiftRepository.
func (r *shiftRepository) List(ctx context.Context, filter shift.ShiftFilter) ([]shift.Template, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"deleted_at IS NULL"}
	var args []any
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.Overnight != nil {
		args = append(args, *filter.Overnight)
		conditions = append(conditions, fmt.Sprintf("overnight = $%d", len(args)))
	}

	query := `SELECT ` + shiftColumns + ` FROM shift_templates WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY code`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to list shift templates: %w", err))
	}
	defer rows.Close()

	var out []shift.Template
	for rows.Next() {
		t, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LockByID implements shift.ShiftRepository.
func (r *shiftRepository) LockByID(ctx context.Context, id string) (shift.Template, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return shift.Template{}, err
	}
	query := `SELECT ` + shiftColumns + ` FROM shift_templates WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	return r.getOne(ctx, q, query, id)
}

// SoftDelete implements shift.ShiftRepository.
func (r *shiftRepository) SoftDelete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE shift_templates SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return translatePgError(fmt.Errorf("failed to delete shift template: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}
