package dbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/proposal"
)

// ProposalStore is an in-memory proposal.ProposalRepository.
type ProposalStore struct {
	tx *Transactor

	mu   sync.Mutex
	rows map[string]proposal.Proposal
	seq  int
}

var _ proposal.ProposalRepository = (*ProposalStore)(nil)

func NewProposalStore(tx *Transactor) *ProposalStore {
	return &ProposalStore{tx: tx, rows: make(map[string]proposal.Proposal)}
}

func (s *ProposalStore) Create(ctx context.Context, p proposal.Proposal) (proposal.Proposal, error) {
	s.mu.Lock()
	s.seq++
	p.ID = newID(kindProposal, s.seq)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.rows[p.ID] = p
	s.mu.Unlock()

	id := p.ID
	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.rows, id)
	})
	return p, nil
}

func (s *ProposalStore) GetByID(ctx context.Context, id string) (proposal.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return proposal.Proposal{}, proposal.ErrProposalNotFound
	}
	return p, nil
}

func (s *ProposalStore) List(ctx context.Context, f proposal.ProposalFilter) ([]proposal.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []proposal.Proposal
	for _, p := range s.rows {
		switch {
		case f.EmployeeID != nil && p.EmployeeID != *f.EmployeeID:
		case f.ManagerID != nil && (p.ManagerID == nil || *p.ManagerID != *f.ManagerID):
		case f.Status != nil && p.Status != *f.Status:
		default:
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *ProposalStore) LockByID(ctx context.Context, id string) (proposal.Proposal, error) {
	if err := s.tx.Lock(ctx, "proposal:"+id); err != nil {
		return proposal.Proposal{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *ProposalStore) UpdateDecision(ctx context.Context, p proposal.Proposal) (proposal.Proposal, error) {
	s.mu.Lock()
	prev, ok := s.rows[p.ID]
	if !ok {
		s.mu.Unlock()
		return proposal.Proposal{}, proposal.ErrProposalNotFound
	}
	next := prev
	next.Status = p.Status
	next.DecisionNote = p.DecisionNote
	next.UpdatedAt = time.Now()
	s.rows[p.ID] = next
	s.mu.Unlock()

	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rows[prev.ID] = prev
	})
	return next, nil
}
