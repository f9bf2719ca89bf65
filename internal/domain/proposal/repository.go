package proposal

import "context"

type ProposalRepository interface {
	Create(ctx context.Context, p Proposal) (Proposal, error)
	GetByID(ctx context.Context, id string) (Proposal, error)
	List(ctx context.Context, filter ProposalFilter) ([]Proposal, error)

	// LockByID reads the proposal under an exclusive row lock. Requires a transaction.
	LockByID(ctx context.Context, id string) (Proposal, error)
	UpdateDecision(ctx context.Context, p Proposal) (Proposal, error)
}
