package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	shifts  attendance.ShiftLookup
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	shifts attendance.ShiftLookup,
	m *metrics.Metrics,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepo,
		shifts:               shifts,
		metrics:              m,
		loc:                  loc,
		now:                  time.Now,
	}
}

// Create implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Create(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.Attendance, error) {
	a, err := req.Attendance()
	if err != nil {
		return attendance.Attendance{}, err
	}

	var created attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.AttendanceRepository.Create(ctx, a)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("create", err)
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	slog.Info("attendance created", "attendance_id", created.ID, "employee_id", created.EmployeeID, "date", created.Date.Format("2006-01-02"))
	return created, nil
}

// BatchRegister implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) BatchRegister(ctx context.Context, req attendance.BatchRegisterRequest) ([]attendance.Attendance, error) {
	if len(req.Items) == 0 {
		return []attendance.Attendance{}, nil
	}

	items, err := req.Attendances()
	if err != nil {
		return nil, err
	}

	var created []attendance.Attendance
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.AttendanceRepository.CreateBatch(ctx, items)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("batch_register", err)
		return nil, fmt.Errorf("failed to batch register attendance: %w", err)
	}

	slog.Info("attendance batch registered", "count", len(created))
	return created, nil
}

// Get implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.Attendance, error) {
	if !validator.IsValidUUID(id) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return s.AttendanceRepository.GetByID(ctx, id)
}

// List implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) List(ctx context.Context, req attendance.ListAttendanceRequest) ([]attendance.Attendance, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, err
	}
	return s.AttendanceRepository.List(ctx, filter)
}

// Punch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Punch(ctx context.Context, req attendance.PunchRequest) (attendance.Attendance, error) {
	direction, when, err := req.Parse(s.now())
	if err != nil {
		return attendance.Attendance{}, err
	}

	updated, err := s.mutate(ctx, "punch", req.ID, func(ctx context.Context, a *attendance.Attendance) error {
		a.Punch(direction, when)
		a.MergePayload(req.Payload)
		return s.recompute(ctx, a)
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	s.metrics.ObservePunch(string(direction))
	slog.Info("attendance punched", "attendance_id", updated.ID, "direction", direction, "at", when)
	return updated, nil
}

// Recompute implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Recompute(ctx context.Context, id string) (attendance.Attendance, error) {
	return s.mutate(ctx, "recompute", id, s.recompute)
}

// UpdateTimes implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) UpdateTimes(ctx context.Context, req attendance.UpdateTimesRequest) (attendance.Attendance, error) {
	updated, err := s.mutate(ctx, "update_times", req.ID, func(ctx context.Context, a *attendance.Attendance) error {
		if err := req.Apply(a); err != nil {
			return err
		}
		return s.recompute(ctx, a)
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	slog.Info("attendance times corrected", "attendance_id", updated.ID)
	return updated, nil
}

// MarkApproved implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkApproved(ctx context.Context, id string, approverID string) (attendance.Attendance, error) {
	if validator.IsEmpty(approverID) {
		return attendance.Attendance{}, validator.ValidationErrors{{Field: "approved_by", Message: "approved_by is required"}}
	}

	return s.setStatus(ctx, "approve", id, func(a *attendance.Attendance) error {
		if a.OnLeave != nil {
			return attendance.ErrLinkedToLeave
		}
		a.Approve(approverID, s.now())
		return nil
	})
}

// MarkPending implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkPending(ctx context.Context, id string) (attendance.Attendance, error) {
	return s.setStatus(ctx, "mark_pending", id, func(a *attendance.Attendance) error {
		if a.OnLeave != nil {
			return attendance.ErrLinkedToLeave
		}
		a.MarkPending()
		return nil
	})
}

// MarkCanceled implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkCanceled(ctx context.Context, id string) (attendance.Attendance, error) {
	return s.setStatus(ctx, "cancel", id, func(a *attendance.Attendance) error {
		a.Cancel()
		return nil
	})
}

func (s *AttendanceServiceImpl) setStatus(ctx context.Context, op, id string, apply func(a *attendance.Attendance) error) (attendance.Attendance, error) {
	updated, err := s.mutate(ctx, op, id, func(_ context.Context, a *attendance.Attendance) error {
		return apply(a)
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	s.metrics.ObserveAttendanceStatus(string(updated.Status))
	slog.Info("attendance status changed", "attendance_id", updated.ID, "status", updated.Status)
	return updated, nil
}

// mutate locks the record, applies fn and persists the result in one transaction.
func (s *AttendanceServiceImpl) mutate(ctx context.Context, op, id string, fn func(ctx context.Context, a *attendance.Attendance) error) (attendance.Attendance, error) {
	if !validator.IsValidUUID(id) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}

	var updated attendance.Attendance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		a, err := s.AttendanceRepository.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, &a); err != nil {
			return err
		}
		updated, err = s.AttendanceRepository.Update(ctx, a)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure(op, err)
		return attendance.Attendance{}, fmt.Errorf("%s attendance %s: %w", op, id, err)
	}
	return updated, nil
}

func (s *AttendanceServiceImpl) recompute(ctx context.Context, a *attendance.Attendance) error {
	var plan *shift.Template
	if a.ShiftTemplateID != nil {
		t, err := s.shifts.GetSnapshot(ctx, *a.ShiftTemplateID)
		if err != nil {
			return fmt.Errorf("load shift %s: %w", *a.ShiftTemplateID, err)
		}
		plan = &t
	}
	a.ApplySummary(attendance.ComputeMinutes(*a, plan, s.loc))
	return nil
}
