package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type handoverRepository struct {
	db database.Querier
}

func NewHandoverRepository(db database.Querier) handover.HandoverRepository {
	return &handoverRepository{db: db}
}

const handoverColumns = `id, employee_id, manager_id, receiver_employee_id, due_date, note, status, created_at, updated_at`

const handoverItemColumns = `id, handover_id, title, description, assignee_id, status, done_at, created_at, updated_at`

func scanHandover(row rowScanner) (handover.Handover, error) {
	var h handover.Handover
	err := row.Scan(&h.ID, &h.EmployeeID, &h.ManagerID, &h.ReceiverEmployeeID, &h.DueDate, &h.Note, &h.Status, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func scanHandoverItem(row rowScanner) (handover.Item, error) {
	var i handover.Item
	err := row.Scan(&i.ID, &i.HandoverID, &i.Title, &i.Description, &i.AssigneeID, &i.Status, &i.DoneAt, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// Create implements handover.HandoverRepository.
func (r *handoverRepository) Create(ctx context.Context, h handover.Handover) (handover.Handover, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO handovers (employee_id, manager_id, receiver_employee_id, due_date, note, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, h.EmployeeID, h.ManagerID, h.ReceiverEmployeeID, h.DueDate, h.Note, h.Status).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return handover.Handover{}, translatePgError(fmt.Errorf("failed to create handover: %w", err))
	}
	return h, nil
}

func (r *handoverRepository) getOne(ctx context.Context, q database.Querier, query, id string) (handover.Handover, error) {
	h, err := scanHandover(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return handover.Handover{}, handover.ErrHandoverNotFound
		}
		return handover.Handover{}, translatePgError(fmt.Errorf("failed to get handover: %w", err))
	}
	return h, nil
}

// GetByID implements handover.HandoverRepository.
func (r *handoverRepository) GetByID(ctx context.Context, id string) (handover.Handover, error) {
	return r.getOne(ctx, GetQuerier(ctx, r.db), `SELECT `+handoverColumns+` FROM handovers WHERE id = $1`, id)
}

// LockByID implements handover.HandoverRepository.
func (r *handoverRepository) LockByID(ctx context.Context, id string) (handover.Handover, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return handover.Handover{}, err
	}
	return r.getOne(ctx, q, `SELECT `+handoverColumns+` FROM handovers WHERE id = $1 FOR UPDATE`, id)
}

// List implements handover.HandoverRepository.
func (r *handoverRepository) List(ctx context.Context, filter handover.HandoverFilter) ([]handover.Handover, error) {
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
	if filter.ReceiverID != nil {
		add("receiver_employee_id = $%d", *filter.ReceiverID)
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + handoverColumns + ` FROM handovers`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to list handovers: %w", err))
	}
	defer rows.Close()

	var out []handover.Handover
	for rows.Next() {
		h, err := scanHandover(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpdateStatus implements handover.HandoverRepository.
func (r *handoverRepository) UpdateStatus(ctx context.Context, id string, status handover.Status) (handover.Handover, error) {
	q := GetQuerier(ctx, r.db)
	query := `UPDATE handovers SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + handoverColumns

	h, err := scanHandover(q.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return handover.Handover{}, handover.ErrHandoverNotFound
		}
		return handover.Handover{}, translatePgError(fmt.Errorf("failed to update handover status: %w", err))
	}
	return h, nil
}

// CreateItem implements handover.HandoverRepository.
func (r *handoverRepository) CreateItem(ctx context.Context, item handover.Item) (handover.Item, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO handover_items (handover_id, title, description, assignee_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query, item.HandoverID, item.Title, item.Description, item.AssigneeID, string(item.Status)).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return handover.Item{}, translatePgError(fmt.Errorf("failed to create handover item: %w", err))
	}
	return item, nil
}

func (r *handoverRepository) getItem(ctx context.Context, q database.Querier, query, id string) (handover.Item, error) {
	item, err := scanHandoverItem(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return handover.Item{}, handover.ErrItemNotFound
		}
		return handover.Item{}, translatePgError(fmt.Errorf("failed to get handover item: %w", err))
	}
	return item, nil
}

// GetItem implements handover.HandoverRepository.
func (r *handoverRepository) GetItem(ctx context.Context, id string) (handover.Item, error) {
	return r.getItem(ctx, GetQuerier(ctx, r.db), `SELECT `+handoverItemColumns+` FROM handover_items WHERE id = $1`, id)
}

// LockItem implements handover.HandoverRepository.
func (r *handoverRepository) LockItem(ctx context.Context, id string) (handover.Item, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return handover.Item{}, err
	}
	return r.getItem(ctx, q, `SELECT `+handoverItemColumns+` FROM handover_items WHERE id = $1 FOR UPDATE`, id)
}

// UpdateItem implements handover.HandoverRepository.
func (r *handoverRepository) UpdateItem(ctx context.Context, item handover.Item) (handover.Item, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE handover_items
		SET title = $2, description = $3, status = $4, done_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query, item.ID, item.Title, item.Description, string(item.Status), item.DoneAt).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return handover.Item{}, handover.ErrItemNotFound
		}
		return handover.Item{}, translatePgError(fmt.Errorf("failed to update handover item: %w", err))
	}
	return item, nil
}

// ListItems implements handover.HandoverRepository.
func (r *handoverRepository) ListItems(ctx context.Context, handoverID string) ([]handover.Item, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + handoverItemColumns + ` FROM handover_items WHERE handover_id = $1 ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, handoverID)
	if err != nil {
		return nil, translatePgError(fmt.Errorf("failed to list handover items: %w", err))
	}
	defer rows.Close()

	var out []handover.Item
	for rows.Next() {
		item, err := scanHandoverItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CountItems implements handover.HandoverRepository.
func (r *handoverRepository) CountItems(ctx context.Context, handoverID string) (total, done int, err error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'DONE')
		FROM handover_items
		WHERE handover_id = $1
	`
	if err := q.QueryRow(ctx, query, handoverID).Scan(&total, &done); err != nil {
		return 0, 0, translatePgError(fmt.Errorf("failed to count handover items: %w", err))
	}
	return total, done, nil
}
