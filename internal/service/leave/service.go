package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	attendance    attendance.AttendanceRepository
	notifications notification.Queuer
	metrics       *metrics.Metrics
	unlinkPolicy  leave.UnlinkPolicy
	now           func() time.Time
}

// NewLeaveService wires the synchronizer. notifications may be nil.
func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveRequestRepository,
	attendanceRepo attendance.AttendanceRepository,
	notifications notification.Queuer,
	m *metrics.Metrics,
	unlinkPolicy leave.UnlinkPolicy,
) leave.LeaveService {
	if unlinkPolicy == "" {
		unlinkPolicy = leave.UnlinkKeepStatus
	}
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRepo,
		attendance:             attendanceRepo,
		notifications:          notifications,
		metrics:                m,
		unlinkPolicy:           unlinkPolicy,
		now:                    time.Now,
	}
}

// Create implements leave.LeaveService.
func (s *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateLeaveRequest) (leave.LeaveRequest, error) {
	l, err := req.LeaveRequest()
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.LeaveRequestRepository.Create(ctx, l)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("leave_create", err)
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("leave request submitted", "leave_id", created.ID, "employee_id", created.EmployeeID, "type", created.LeaveType)
	if created.HandoverToEmployeeID != nil {
		s.notify(ctx, notification.CreateNotificationRequest{
			RecipientID: *created.HandoverToEmployeeID,
			SenderID:    &created.EmployeeID,
			Type:        notification.TypeLeaveSubmitted,
			Title:       "Work handed over to you",
			Message:     fmt.Sprintf("You cover %s to %s", created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02")),
			Data:        map[string]any{"leave_id": created.ID},
		})
	}
	return created, nil
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !validator.IsValidUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return s.LeaveRequestRepository.GetByID(ctx, id)
}

// ListMy implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMy(ctx context.Context, employeeID string, statuses []leave.Status) ([]leave.LeaveRequest, error) {
	if validator.IsEmpty(employeeID) {
		return nil, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	return s.LeaveRequestRepository.List(ctx, leave.LeaveFilter{EmployeeID: &employeeID, Statuses: statuses})
}

// ListPending implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPending(ctx context.Context, req leave.ListPendingRequest) ([]leave.LeaveRequest, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, err
	}
	return s.LeaveRequestRepository.List(ctx, filter)
}

// Filter implements leave.LeaveService.
func (s *LeaveServiceImpl) Filter(ctx context.Context, req leave.FilterLeaveRequest) ([]leave.LeaveRequest, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, err
	}
	return s.LeaveRequestRepository.List(ctx, filter)
}

// ApproveAndLink implements leave.LeaveService.
func (s *LeaveServiceImpl) ApproveAndLink(ctx context.Context, leaveID, managerID string, doLink bool) (leave.LeaveRequest, error) {
	return s.decide(ctx, "approve", leaveID, managerID, leave.StatusApproved, func(ctx context.Context, l leave.LeaveRequest) error {
		if !doLink {
			return nil
		}
		return s.link(ctx, l)
	})
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, leaveID, managerID string) (leave.LeaveRequest, error) {
	return s.decide(ctx, "reject", leaveID, managerID, leave.StatusRejected, nil)
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, leaveID, actorID string) (leave.LeaveRequest, error) {
	return s.decide(ctx, "cancel", leaveID, actorID, leave.StatusCancelled, func(ctx context.Context, l leave.LeaveRequest) error {
		return s.unlink(ctx, l.ID)
	})
}

// Delete implements leave.LeaveService.
func (s *LeaveServiceImpl) Delete(ctx context.Context, leaveID string) error {
	if !validator.IsValidUUID(leaveID) {
		return leave.ErrLeaveRequestNotFound
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.LeaveRequestRepository.LockByID(ctx, leaveID); err != nil {
			return err
		}
		if err := s.unlink(ctx, leaveID); err != nil {
			return err
		}
		return s.LeaveRequestRepository.Delete(ctx, leaveID)
	})
	if err != nil {
		s.metrics.ObserveFailure("leave_delete", err)
		return fmt.Errorf("delete leave request %s: %w", leaveID, err)
	}

	slog.Info("leave request deleted", "leave_id", leaveID)
	return nil
}

// decide locks the request, applies the transition and runs sync in the
// same transaction. The caller is notified only after commit.
func (s *LeaveServiceImpl) decide(
	ctx context.Context,
	op, leaveID, actorID string,
	next leave.Status,
	sync func(ctx context.Context, l leave.LeaveRequest) error,
) (leave.LeaveRequest, error) {
	if validator.IsEmpty(actorID) {
		return leave.LeaveRequest{}, validator.ValidationErrors{{Field: "decided_by", Message: "decided_by is required"}}
	}
	if !validator.IsValidUUID(leaveID) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}

	var (
		decided leave.LeaveRequest
		changed bool
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		l, err := s.LeaveRequestRepository.LockByID(ctx, leaveID)
		if err != nil {
			return err
		}
		if changed, err = l.Decide(next, actorID, s.now()); err != nil {
			return err
		}
		if changed {
			if l, err = s.LeaveRequestRepository.UpdateDecision(ctx, l); err != nil {
				return err
			}
		}
		decided = l
		if sync != nil {
			return sync(ctx, l)
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveFailure("leave_"+op, err)
		return leave.LeaveRequest{}, fmt.Errorf("%s leave request %s: %w", op, leaveID, err)
	}

	if changed {
		s.metrics.ObserveLeaveDecision(string(decided.Status))
		slog.Info("leave request decided", "leave_id", decided.ID, "status", decided.Status, "decided_by", actorID)
		s.notifyDecision(ctx, decided, actorID)
	}
	return decided, nil
}

// link points every attendance row of the employee inside the leave range at
// the leave. Active rows are canceled. Rows are locked in id order.
func (s *LeaveServiceImpl) link(ctx context.Context, l leave.LeaveRequest) error {
	rows, err := s.attendance.LockByEmployeeDateRange(ctx, l.EmployeeID, l.StartDate, l.EndDate)
	if err != nil {
		return fmt.Errorf("lock attendance: %w", err)
	}

	canceled := 0
	for _, a := range rows {
		wasActive := a.Status != attendance.StatusCanceled
		a.LinkLeave(l.ID)
		if _, err := s.attendance.Update(ctx, a); err != nil {
			return fmt.Errorf("link attendance %s: %w", a.ID, err)
		}
		if wasActive {
			canceled++
		}
	}

	s.metrics.ObserveLeaveSync("link", len(rows))
	s.metrics.ObserveLeaveSync("cancel", canceled)
	slog.Debug("attendance linked to leave", "leave_id", l.ID, "rows", len(rows), "canceled", canceled)
	return nil
}

func (s *LeaveServiceImpl) unlink(ctx context.Context, leaveID string) error {
	rows, err := s.attendance.LockByLeave(ctx, leaveID)
	if err != nil {
		return fmt.Errorf("lock attendance: %w", err)
	}

	restore := s.unlinkPolicy == leave.UnlinkRestorePending
	for _, a := range rows {
		a.UnlinkLeave(restore)
		if _, err := s.attendance.Update(ctx, a); err != nil {
			return fmt.Errorf("unlink attendance %s: %w", a.ID, err)
		}
	}

	s.metrics.ObserveLeaveSync("unlink", len(rows))
	slog.Debug("attendance unlinked from leave", "leave_id", leaveID, "rows", len(rows), "policy", s.unlinkPolicy)
	return nil
}

func (s *LeaveServiceImpl) notifyDecision(ctx context.Context, l leave.LeaveRequest, actorID string) {
	var (
		typ   notification.NotificationType
		title string
	)
	switch l.Status {
	case leave.StatusApproved:
		typ, title = notification.TypeLeaveApproved, "Leave request approved"
	case leave.StatusRejected:
		typ, title = notification.TypeLeaveRejected, "Leave request rejected"
	case leave.StatusCancelled:
		typ, title = notification.TypeLeaveCancelled, "Leave request cancelled"
	default:
		return
	}
	if actorID == l.EmployeeID {
		return
	}

	s.notify(ctx, notification.CreateNotificationRequest{
		RecipientID: l.EmployeeID,
		SenderID:    &actorID,
		Type:        typ,
		Title:       title,
		Message:     fmt.Sprintf("%s leave from %s to %s", l.LeaveType, l.StartDate.Format("2006-01-02"), l.EndDate.Format("2006-01-02")),
		Data:        map[string]any{"leave_id": l.ID, "status": string(l.Status)},
	})
}

// notify is best effort; the decision is already committed.
func (s *LeaveServiceImpl) notify(ctx context.Context, req notification.CreateNotificationRequest) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.QueueNotification(ctx, req); err != nil {
		slog.Warn("failed to queue notification", "type", req.Type, "recipient_id", req.RecipientID, "error", err)
	}
}
