package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db database.Querier
}

func NewLeaveRequestRepository(db database.Querier) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveColumns = `id, employee_id, start_date, end_date, leave_type, hours, paid, reason,
		status, decided_by, decision_ts, handover_to_employee_id, handover_content,
		created_at, updated_at`

func scanLeave(row rowScanner) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.StartDate, &lr.EndDate, &lr.LeaveType, &lr.Hours, &lr.Paid, &lr.Reason,
		&lr.Status, &lr.DecidedBy, &lr.DecisionTs, &lr.HandoverToEmployeeID, &lr.HandoverContent,
		&lr.CreatedAt, &lr.UpdatedAt,
	)
	return lr, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			employee_id, start_date, end_date, leave_type, hours, paid, reason,
			status, handover_to_employee_id, handover_content
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.EmployeeID, request.StartDate, request.EndDate, request.LeaveType, request.Hours, request.Paid, request.Reason,
		request.Status, request.HandoverToEmployeeID, request.HandoverContent,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, translatePgError(fmt.Errorf("failed to create leave request: %w", err))
	}

	return request, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	lr, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, translatePgError(fmt.Errorf("failed to get leave request: %w", err))
	}
	return lr, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, error) {
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
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", statuses)
	}
	if filter.LeaveType != nil {
		add("leave_type = $%d", string(*filter.LeaveType))
	}
	if filter.HandoverTo != nil {
		add("handover_to_employee_id = $%d", *filter.HandoverTo)
	}
	if filter.DecidedBy != nil {
		add("decided_by = $%d", *filter.DecidedBy)
	}
	if filter.StartFrom != nil {
		add("start_date >= $%d", *filter.StartFrom)
	}
	if filter.EndTo != nil {
		add("end_date <= $%d", *filter.EndTo)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + leaveColumns + ` FROM leave_requests`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	if filter.OrderByDate {
		sb.WriteString(" ORDER BY start_date, id")
	} else {
		sb.WriteString(" ORDER BY created_at DESC")
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to list leave requests: %w", err))
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

// LockByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) LockByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1 FOR UPDATE`

	lr, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, translatePgError(fmt.Errorf("failed to lock leave request: %w", err))
	}
	return lr, nil
}

// UpdateDecision implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateDecision(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decision_ts = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query, request.ID, request.Status, request.DecidedBy, request.DecisionTs).Scan(&request.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, translatePgError(fmt.Errorf("failed to update leave decision: %w", err))
	}
	return request, nil
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	query := `
		DELETE FROM leave_requests
		WHERE id = $1
	`
	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return translatePgError(fmt.Errorf("failed to delete leave request: %w", err))
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}
