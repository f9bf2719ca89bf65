package dbtest

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

// AttendanceStore is an in-memory attendance.AttendanceRepository.
type AttendanceStore struct {
	tx *Transactor

	mu   sync.Mutex
	rows map[string]attendance.Attendance
	seq  int

	// UpdateErr, when set, is consulted before every Update.
	UpdateErr func(a attendance.Attendance) error
}

var _ attendance.AttendanceRepository = (*AttendanceStore)(nil)

func NewAttendanceStore(tx *Transactor) *AttendanceStore {
	return &AttendanceStore{tx: tx, rows: make(map[string]attendance.Attendance)}
}

// Seed stores a without a transaction and returns it with an id.
func (s *AttendanceStore) Seed(a attendance.Attendance) attendance.Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		s.seq++
		a.ID = newID(kindAttendance, s.seq)
	}
	if a.Status == "" {
		a.Status = attendance.StatusPending
	}
	s.rows[a.ID] = clone(a)
	return clone(a)
}

// Row returns the committed state of id.
func (s *AttendanceStore) Row(id string) attendance.Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.rows[id])
}

func (s *AttendanceStore) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	s.mu.Lock()
	s.seq++
	a.ID = newID(kindAttendance, s.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	s.rows[a.ID] = clone(a)
	s.mu.Unlock()

	id := a.ID
	OnRollback(ctx, func() { s.delete(id) })
	return clone(a), nil
}

func (s *AttendanceStore) CreateBatch(ctx context.Context, items []attendance.Attendance) ([]attendance.Attendance, error) {
	out := make([]attendance.Attendance, 0, len(items))
	for _, a := range items {
		created, err := s.Create(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (s *AttendanceStore) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rows[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return clone(a), nil
}

func (s *AttendanceStore) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []attendance.Attendance
	for _, a := range s.rows {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && a.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.Date.After(*filter.To) {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *AttendanceStore) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	if s.UpdateErr != nil {
		if err := s.UpdateErr(a); err != nil {
			return attendance.Attendance{}, err
		}
	}

	s.mu.Lock()
	prev, ok := s.rows[a.ID]
	if !ok {
		s.mu.Unlock()
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.UpdatedAt = time.Now()
	s.rows[a.ID] = clone(a)
	s.mu.Unlock()

	OnRollback(ctx, func() { s.put(prev) })
	return clone(a), nil
}

func (s *AttendanceStore) LockByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if err := s.tx.Lock(ctx, "attendance:"+id); err != nil {
		return attendance.Attendance{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *AttendanceStore) LockByEmployeeDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	return s.lockWhere(ctx, func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to)
	})
}

func (s *AttendanceStore) LockByLeave(ctx context.Context, leaveID string) ([]attendance.Attendance, error) {
	return s.lockWhere(ctx, func(a attendance.Attendance) bool {
		return a.OnLeave != nil && *a.OnLeave == leaveID
	})
}

func (s *AttendanceStore) lockWhere(ctx context.Context, match func(a attendance.Attendance) bool) ([]attendance.Attendance, error) {
	if !InTransaction(ctx) {
		return nil, ErrNoTransaction
	}

	s.mu.Lock()
	var ids []string
	for id, a := range s.rows {
		if match(a) {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()
	sort.Strings(ids)

	out := make([]attendance.Attendance, 0, len(ids))
	for _, id := range ids {
		a, err := s.LockByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// the row may have changed while we waited for its lock
		if match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AttendanceStore) put(a attendance.Attendance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[a.ID] = a
}

func (s *AttendanceStore) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
}

func clone(a attendance.Attendance) attendance.Attendance {
	if a.RawPayload != nil {
		a.RawPayload = maps.Clone(a.RawPayload)
	}
	return a
}

// ShiftStore is an in-memory attendance.ShiftLookup.
type ShiftStore map[string]shift.Template

func (s ShiftStore) GetSnapshot(ctx context.Context, id string) (shift.Template, error) {
	t, ok := s[id]
	if !ok {
		return shift.Template{}, shift.ErrShiftNotFound
	}
	return t, nil
}
