package dbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
)

// HandoverStore is an in-memory handover.HandoverRepository.
type HandoverStore struct {
	tx *Transactor

	mu        sync.Mutex
	handovers map[string]handover.Handover
	items     map[string]handover.Item
	seq       int

	// UpdateStatusErr, when set, is returned by UpdateStatus.
	UpdateStatusErr error
}

var _ handover.HandoverRepository = (*HandoverStore)(nil)

func NewHandoverStore(tx *Transactor) *HandoverStore {
	return &HandoverStore{
		tx:        tx,
		handovers: make(map[string]handover.Handover),
		items:     make(map[string]handover.Item),
	}
}

func (s *HandoverStore) nextID(kind uint32) string {
	s.seq++
	return newID(kind, s.seq)
}

func (s *HandoverStore) Create(ctx context.Context, h handover.Handover) (handover.Handover, error) {
	s.mu.Lock()
	h.ID = s.nextID(kindHandover)
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	h.Items = nil
	s.handovers[h.ID] = h
	s.mu.Unlock()

	id := h.ID
	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handovers, id)
	})
	return h, nil
}

func (s *HandoverStore) GetByID(ctx context.Context, id string) (handover.Handover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handovers[id]
	if !ok {
		return handover.Handover{}, handover.ErrHandoverNotFound
	}
	return h, nil
}

func (s *HandoverStore) List(ctx context.Context, f handover.HandoverFilter) ([]handover.Handover, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []handover.Handover
	for _, h := range s.handovers {
		switch {
		case f.EmployeeID != nil && h.EmployeeID != *f.EmployeeID:
		case f.ReceiverID != nil && (h.ReceiverEmployeeID == nil || *h.ReceiverEmployeeID != *f.ReceiverID):
		case f.Status != nil && h.Status != *f.Status:
		default:
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *HandoverStore) LockByID(ctx context.Context, id string) (handover.Handover, error) {
	if err := s.tx.Lock(ctx, "handover:"+id); err != nil {
		return handover.Handover{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *HandoverStore) UpdateStatus(ctx context.Context, id string, status handover.Status) (handover.Handover, error) {
	if s.UpdateStatusErr != nil {
		return handover.Handover{}, s.UpdateStatusErr
	}

	s.mu.Lock()
	prev, ok := s.handovers[id]
	if !ok {
		s.mu.Unlock()
		return handover.Handover{}, handover.ErrHandoverNotFound
	}
	next := prev
	next.Status = status
	next.UpdatedAt = time.Now()
	s.handovers[id] = next
	s.mu.Unlock()

	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.handovers[prev.ID] = prev
	})
	return next, nil
}

func (s *HandoverStore) CreateItem(ctx context.Context, item handover.Item) (handover.Item, error) {
	s.mu.Lock()
	if _, ok := s.handovers[item.HandoverID]; !ok {
		s.mu.Unlock()
		return handover.Item{}, handover.ErrHandoverNotFound
	}
	item.ID = s.nextID(kindHandoverItem)
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	s.items[item.ID] = item
	s.mu.Unlock()

	id := item.ID
	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.items, id)
	})
	return item, nil
}

func (s *HandoverStore) GetItem(ctx context.Context, id string) (handover.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return handover.Item{}, handover.ErrItemNotFound
	}
	return item, nil
}

func (s *HandoverStore) LockItem(ctx context.Context, id string) (handover.Item, error) {
	if err := s.tx.Lock(ctx, "handover_item:"+id); err != nil {
		return handover.Item{}, err
	}
	return s.GetItem(ctx, id)
}

func (s *HandoverStore) UpdateItem(ctx context.Context, item handover.Item) (handover.Item, error) {
	s.mu.Lock()
	prev, ok := s.items[item.ID]
	if !ok {
		s.mu.Unlock()
		return handover.Item{}, handover.ErrItemNotFound
	}
	item.UpdatedAt = time.Now()
	s.items[item.ID] = item
	s.mu.Unlock()

	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.items[prev.ID] = prev
	})
	return item, nil
}

func (s *HandoverStore) ListItems(ctx context.Context, handoverID string) ([]handover.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []handover.Item
	for _, item := range s.items {
		if item.HandoverID == handoverID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *HandoverStore) CountItems(ctx context.Context, handoverID string) (total, done int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.HandoverID != handoverID {
			continue
		}
		total++
		if item.Status == handover.ItemDone {
			done++
		}
	}
	return total, done, nil
}
