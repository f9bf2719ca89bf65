package shift

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type ShiftServiceImpl struct {
	tx database.Transactor
	shift.ShiftRepository
	cache   shift.SnapshotCache
	metrics *metrics.Metrics
}

// NewShiftService wires the shift service. cache may be nil.
func NewShiftService(tx database.Transactor, repo shift.ShiftRepository, cache shift.SnapshotCache, m *metrics.Metrics) *ShiftServiceImpl {
	return &ShiftServiceImpl{tx: tx, ShiftRepository: repo, cache: cache, metrics: m}
}

var _ shift.ShiftService = (*ShiftServiceImpl)(nil)

// Create implements shift.ShiftService.
func (s *ShiftServiceImpl) Create(ctx context.Context, req shift.CreateShiftRequest) (shift.Template, error) {
	t, err := req.Template()
	if err != nil {
		return shift.Template{}, err
	}
	created, err := s.ShiftRepository.Create(ctx, t)
	if err != nil {
		s.metrics.ObserveFailure("shift_create", err)
		return shift.Template{}, fmt.Errorf("failed to create shift: %w", err)
	}
	slog.Info("shift template created", "shift_id", created.ID, "code", created.Code)
	return created, nil
}

// Get implements shift.ShiftService.
func (s *ShiftServiceImpl) Get(ctx context.Context, id string) (shift.Template, error) {
	if !validator.IsValidUUID(id) {
		return shift.Template{}, shift.ErrShiftNotFound
	}
	return s.ShiftRepository.GetByID(ctx, id)
}

// GetByCode implements shift.ShiftService.
func (s *ShiftServiceImpl) GetByCode(ctx context.Context, code string) (shift.Template, error) {
	return s.ShiftRepository.GetByCode(ctx, code)
}

// List implements shift.ShiftService.
func (s *ShiftServiceImpl) List(ctx context.Context, filter shift.ShiftFilter) ([]shift.Template, error) {
	return s.ShiftRepository.List(ctx, filter)
}

// GetSnapshot serves attendance computation. Versions never change once
// written, so a cached copy stays valid until the version is retired.
func (s *ShiftServiceImpl) GetSnapshot(ctx context.Context, id string) (shift.Template, error) {
	if !validator.IsValidUUID(id) {
		return shift.Template{}, shift.ErrShiftNotFound
	}
	if s.cache != nil {
		t, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			slog.Warn("shift cache read failed", "shift_id", id, "error", err)
		} else if ok {
			s.metrics.ObserveShiftCache(true)
			return t, nil
		}
		s.metrics.ObserveShiftCache(false)
	}

	t, err := s.ShiftRepository.GetSnapshot(ctx, id)
	if err != nil {
		return shift.Template{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, t); err != nil {
			slog.Warn("shift cache write failed", "shift_id", id, "error", err)
		}
	}
	return t, nil
}

// UpdateVersioned implements shift.ShiftService.
func (s *ShiftServiceImpl) UpdateVersioned(ctx context.Context, req shift.UpdateShiftRequest) (shift.Template, error) {
	if !validator.IsValidUUID(req.ID) {
		return shift.Template{}, shift.ErrShiftNotFound
	}

	var next shift.Template
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.ShiftRepository.LockByID(ctx, req.ID)
		if err != nil {
			return err
		}
		merged, err := req.Apply(current)
		if err != nil {
			return err
		}
		if err := s.ShiftRepository.SoftDelete(ctx, current.ID); err != nil {
			return err
		}
		next, err = s.ShiftRepository.Create(ctx, merged)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("shift_update", err)
		return shift.Template{}, fmt.Errorf("update shift %s: %w", req.ID, err)
	}

	s.invalidate(ctx, req.ID)
	slog.Info("shift template versioned", "previous_id", req.ID, "shift_id", next.ID, "code", next.Code)
	return next, nil
}

// Delete implements shift.ShiftService.
func (s *ShiftServiceImpl) Delete(ctx context.Context, id string) error {
	if !validator.IsValidUUID(id) {
		return shift.ErrShiftNotFound
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.ShiftRepository.LockByID(ctx, id); err != nil {
			return err
		}
		return s.ShiftRepository.SoftDelete(ctx, id)
	})
	if err != nil {
		s.metrics.ObserveFailure("shift_delete", err)
		return fmt.Errorf("delete shift %s: %w", id, err)
	}

	s.invalidate(ctx, id)
	slog.Info("shift template deleted", "shift_id", id)
	return nil
}

func (s *ShiftServiceImpl) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.Warn("shift cache invalidation failed", "shift_id", id, "error", err)
	}
}
