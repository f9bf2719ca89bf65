package dbtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

// TemplateStore is an in-memory shift.ShiftRepository that keeps
// soft-deleted versions and enforces one active template per code.
type TemplateStore struct {
	tx *Transactor

	mu   sync.Mutex
	rows map[string]shift.Template
	seq  int
}

var _ shift.ShiftRepository = (*TemplateStore)(nil)

func NewTemplateStore(tx *Transactor) *TemplateStore {
	return &TemplateStore{tx: tx, rows: make(map[string]shift.Template)}
}

func (s *TemplateStore) Create(ctx context.Context, t shift.Template) (shift.Template, error) {
	s.mu.Lock()
	for _, existing := range s.rows {
		if existing.DeletedAt == nil && existing.Code == t.Code {
			s.mu.Unlock()
			return shift.Template{}, shift.ErrShiftCodeExists
		}
	}
	s.seq++
	t.ID = newID(kindShift, s.seq)
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	t.DeletedAt = nil
	s.rows[t.ID] = t
	s.mu.Unlock()

	id := t.ID
	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.rows, id)
	})
	return t, nil
}

func (s *TemplateStore) GetByID(ctx context.Context, id string) (shift.Template, error) {
	t, err := s.GetSnapshot(ctx, id)
	if err != nil {
		return shift.Template{}, err
	}
	if t.DeletedAt != nil {
		return shift.Template{}, shift.ErrShiftNotFound
	}
	return t, nil
}

func (s *TemplateStore) GetSnapshot(ctx context.Context, id string) (shift.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return shift.Template{}, shift.ErrShiftNotFound
	}
	return t, nil
}

func (s *TemplateStore) GetByCode(ctx context.Context, code string) (shift.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.rows {
		if t.DeletedAt == nil && t.Code == code {
			return t, nil
		}
	}
	return shift.Template{}, shift.ErrShiftNotFound
}

func (s *TemplateStore) List(ctx context.Context, f shift.ShiftFilter) ([]shift.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shift.Template
	for _, t := range s.rows {
		switch {
		case t.DeletedAt != nil:
		case f.Overnight != nil && t.Overnight != *f.Overnight:
		case f.Query != "" && !strings.Contains(strings.ToLower(t.Code+" "+t.Name), strings.ToLower(f.Query)):
		default:
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *TemplateStore) LockByID(ctx context.Context, id string) (shift.Template, error) {
	if err := s.tx.Lock(ctx, "shift:"+id); err != nil {
		return shift.Template{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *TemplateStore) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	prev, ok := s.rows[id]
	if !ok || prev.DeletedAt != nil {
		s.mu.Unlock()
		return shift.ErrShiftNotFound
	}
	now := time.Now()
	next := prev
	next.DeletedAt = &now
	s.rows[id] = next
	s.mu.Unlock()

	OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rows[prev.ID] = prev
	})
	return nil
}
