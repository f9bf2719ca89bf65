package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/proposal"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type proposalRepository struct {
	db database.Querier
}

func NewProposalRepository(db database.Querier) proposal.ProposalRepository {
	return &proposalRepository{db: db}
}

const proposalColumns = `id, employee_id, manager_id, type, title, content, status, decision_note, created_at, updated_at`

func scanProposal(row rowScanner) (proposal.Proposal, error) {
	var p proposal.Proposal
	err := row.Scan(&p.ID, &p.EmployeeID, &p.ManagerID, &p.Type, &p.Title, &p.Content, &p.Status, &p.DecisionNote, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create implements proposal.ProposalRepository.
func (r *proposalRepository) Create(ctx context.Context, p proposal.Proposal) (proposal.Proposal, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO proposals (employee_id, manager_id, type, title, content, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, p.EmployeeID, p.ManagerID, string(p.Type), p.Title, p.Content, string(p.Status)).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return proposal.Proposal{}, translatePgError(fmt.Errorf("failed to create proposal: %w", err))
	}
	return p, nil
}

func (r *proposalRepository) getOne(ctx context.Context, q database.Querier, query, id string) (proposal.Proposal, error) {
	p, err := scanProposal(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return proposal.Proposal{}, proposal.ErrProposalNotFound
		}
		return proposal.Proposal{}, translatePgError(fmt.Errorf("failed to get proposal: %w", err))
	}
	return p, nil
}

// GetByID implements proposal.ProposalRepository.
func (r *proposalRepository) GetByID(ctx context.Context, id string) (proposal.Proposal, error) {
	return r.getOne(ctx, GetQuerier(ctx, r.db), `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
}

// LockByID implements proposal.ProposalRepository.
func (r *proposalRepository) LockByID(ctx context.Context, id string) (proposal.Proposal, error) {
	q, err := lockingQuerier(ctx)
	if err != nil {
		return proposal.Proposal{}, err
	}
	return r.getOne(ctx, q, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE`, id)
}

// List implements proposal.ProposalRepository.
func (r *proposalRepository) List(ctx context.Context, filter proposal.ProposalFilter) ([]proposal.Proposal, error) {
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
	if filter.ManagerID != nil {
		add("manager_id = $%d", *filter.ManagerID)
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + proposalColumns + ` FROM proposals`)
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
		return nil, translatePgError(fmt.Errorf("failed to list proposals: %w", err))
	}
	defer rows.Close()

	var out []proposal.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateDecision implements proposal.ProposalRepository.
func (r *proposalRepository) UpdateDecision(ctx context.Context, p proposal.Proposal) (proposal.Proposal, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE proposals SET status = $2, decision_note = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := q.QueryRow(ctx, query, p.ID, string(p.Status), p.DecisionNote).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return proposal.Proposal{}, proposal.ErrProposalNotFound
		}
		return proposal.Proposal{}, translatePgError(fmt.Errorf("failed to update proposal: %w", err))
	}
	return p, nil
}
