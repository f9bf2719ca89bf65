package proposal

import "context"

type ProposalService interface {
	Create(ctx context.Context, req CreateProposalRequest) (Proposal, error)
	Get(ctx context.Context, id string) (Proposal, error)
	Filter(ctx context.Context, req FilterProposalRequest) ([]Proposal, error)
	SetStatus(ctx context.Context, req SetStatusRequest) (Proposal, error)
	UpdateDecisionNote(ctx context.Context, id string, note string) (Proposal, error)
}
