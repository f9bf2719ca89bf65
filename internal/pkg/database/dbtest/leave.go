package dbtest

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
)

// LeaveStore is an in-memory leave.LeaveRequestRepository.
type LeaveStore struct {
	tx *Transactor

	mu   sync.Mutex
	rows map[string]leave.LeaveRequest
	seq  int
}

var _ leave.LeaveRequestRepository = (*LeaveStore)(nil)

func NewLeaveStore(tx *Transactor) *LeaveStore {
	return &LeaveStore{tx: tx, rows: make(map[string]leave.LeaveRequest)}
}

func (s *LeaveStore) Seed(l leave.LeaveRequest) leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		s.seq++
		l.ID = newID(kindLeave, s.seq)
	}
	if l.Status == "" {
		l.Status = leave.StatusSubmitted
	}
	s.rows[l.ID] = l
	return l
}

// Row returns the committed state of id and whether it exists.
func (s *LeaveStore) Row(id string) (leave.LeaveRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rows[id]
	return l, ok
}

func (s *LeaveStore) Create(ctx context.Context, l leave.LeaveRequest) (leave.LeaveRequest, error) {
	s.mu.Lock()
	s.seq++
	l.ID = newID(kindLeave, s.seq)
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	s.rows[l.ID] = l
	s.mu.Unlock()

	id := l.ID
	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.rows, id)
	})
	return l, nil
}

func (s *LeaveStore) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rows[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return l, nil
}

func (s *LeaveStore) List(ctx context.Context, f leave.LeaveFilter) ([]leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []leave.LeaveRequest
	for _, l := range s.rows {
		switch {
		case f.EmployeeID != nil && l.EmployeeID != *f.EmployeeID:
		case len(f.Statuses) > 0 && !slices.Contains(f.Statuses, l.Status):
		case f.LeaveType != nil && l.LeaveType != *f.LeaveType:
		case f.HandoverTo != nil && (l.HandoverToEmployeeID == nil || *l.HandoverToEmployeeID != *f.HandoverTo):
		case f.DecidedBy != nil && (l.DecidedBy == nil || *l.DecidedBy != *f.DecidedBy):
		case f.StartFrom != nil && l.StartDate.Before(*f.StartFrom):
		case f.EndTo != nil && l.EndDate.After(*f.EndTo):
		default:
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.OrderByDate && !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *LeaveStore) LockByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if err := s.tx.Lock(ctx, "leave:"+id); err != nil {
		return leave.LeaveRequest{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *LeaveStore) UpdateDecision(ctx context.Context, l leave.LeaveRequest) (leave.LeaveRequest, error) {
	s.mu.Lock()
	prev, ok := s.rows[l.ID]
	if !ok {
		s.mu.Unlock()
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	next := prev
	next.Status = l.Status
	next.DecidedBy = l.DecidedBy
	next.DecisionTs = l.DecisionTs
	next.UpdatedAt = time.Now()
	s.rows[l.ID] = next
	s.mu.Unlock()

	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rows[prev.ID] = prev
	})
	return next, nil
}

func (s *LeaveStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	prev, ok := s.rows[id]
	if !ok {
		s.mu.Unlock()
		return leave.ErrLeaveRequestNotFound
	}
	delete(s.rows, id)
	s.mu.Unlock()

	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rows[prev.ID] = prev
	})
	return nil
}
