package handover

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type HandoverServiceImpl struct {
	tx database.Transactor
	handover.HandoverRepository
	notifications  notification.Queuer
	metrics        *metrics.Metrics
	revertOnReopen bool
	now            func() time.Time
}

func NewHandoverService(
	tx database.Transactor,
	repo handover.HandoverRepository,
	notifications notification.Queuer,
	m *metrics.Metrics,
	revertOnReopen bool,
) handover.HandoverService {
	return &HandoverServiceImpl{
		tx:                 tx,
		HandoverRepository: repo,
		notifications:      notifications,
		metrics:            m,
		revertOnReopen:     revertOnReopen,
		now:                time.Now,
	}
}

// Create implements handover.HandoverService.
func (s *HandoverServiceImpl) Create(ctx context.Context, req handover.CreateHandoverRequest) (handover.Handover, error) {
	h, err := req.Handover()
	if err != nil {
		return handover.Handover{}, err
	}

	created, err := s.HandoverRepository.Create(ctx, h)
	if err != nil {
		s.metrics.ObserveFailure("handover_create", err)
		return handover.Handover{}, fmt.Errorf("failed to create handover: %w", err)
	}

	slog.Info("handover created", "handover_id", created.ID, "employee_id", created.EmployeeID)
	return created, nil
}

// Get implements handover.HandoverService.
func (s *HandoverServiceImpl) Get(ctx context.Context, id string) (handover.Handover, error) {
	if !validator.IsValidUUID(id) {
		return handover.Handover{}, handover.ErrHandoverNotFound
	}
	h, err := s.HandoverRepository.GetByID(ctx, id)
	if err != nil {
		return handover.Handover{}, err
	}
	if h.Items, err = s.HandoverRepository.ListItems(ctx, id); err != nil {
		return handover.Handover{}, fmt.Errorf("list handover items: %w", err)
	}
	return h, nil
}

// List implements handover.HandoverService.
func (s *HandoverServiceImpl) List(ctx context.Context, req handover.ListHandoverRequest) ([]handover.Handover, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, err
	}
	return s.HandoverRepository.List(ctx, filter)
}

// AddItem implements handover.HandoverService.
func (s *HandoverServiceImpl) AddItem(ctx context.Context, handoverID string, req handover.AddItemRequest) (handover.ItemChange, error) {
	if !validator.IsValidUUID(handoverID) {
		return handover.ItemChange{}, handover.ErrHandoverNotFound
	}
	item, err := req.Item(handoverID)
	if err != nil {
		return handover.ItemChange{}, err
	}

	var change handover.ItemChange
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		parent, err := s.HandoverRepository.LockByID(ctx, handoverID)
		if err != nil {
			return err
		}
		if change.Item, err = s.HandoverRepository.CreateItem(ctx, item); err != nil {
			return err
		}
		change.Handover, err = s.sync(ctx, parent)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("handover_add_item", err)
		return handover.ItemChange{}, fmt.Errorf("add item to handover %s: %w", handoverID, err)
	}

	s.metrics.ObserveHandoverItem(string(change.Handover.Status))
	slog.Info("handover item added", "handover_id", handoverID, "item_id", change.Item.ID, "handover_status", change.Handover.Status)
	return change, nil
}

// SetItemStatus implements handover.HandoverService.
func (s *HandoverServiceImpl) SetItemStatus(ctx context.Context, req handover.SetItemStatusRequest) (handover.ItemChange, error) {
	status, err := handover.ParseItemStatus(req.Status)
	if err != nil {
		return handover.ItemChange{}, err
	}
	if !validator.IsValidUUID(req.ItemID) {
		return handover.ItemChange{}, handover.ErrItemNotFound
	}

	// The parent id never changes, so it can be read before locking.
	// Locks are always taken parent first, then item.
	current, err := s.HandoverRepository.GetItem(ctx, req.ItemID)
	if err != nil {
		return handover.ItemChange{}, err
	}

	var (
		change    handover.ItemChange
		completed bool
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		parent, err := s.HandoverRepository.LockByID(ctx, current.HandoverID)
		if err != nil {
			return err
		}
		item, err := s.HandoverRepository.LockItem(ctx, req.ItemID)
		if err != nil {
			return err
		}
		item.SetStatus(status, s.now())
		if change.Item, err = s.HandoverRepository.UpdateItem(ctx, item); err != nil {
			return err
		}
		if change.Handover, err = s.sync(ctx, parent); err != nil {
			return err
		}
		completed = parent.Status != handover.StatusDone && change.Handover.Status == handover.StatusDone
		return nil
	})
	if err != nil {
		s.metrics.ObserveFailure("handover_set_item_status", err)
		return handover.ItemChange{}, fmt.Errorf("set handover item %s status: %w", req.ItemID, err)
	}

	s.metrics.ObserveHandoverItem(string(change.Handover.Status))
	slog.Info("handover item updated",
		"item_id", change.Item.ID,
		"item_status", change.Item.Status,
		"handover_id", change.Handover.ID,
		"handover_status", change.Handover.Status,
	)
	if completed {
		s.notifyCompleted(ctx, change.Handover)
	}
	return change, nil
}

// sync recomputes the parent status from its items. parent must be locked.
func (s *HandoverServiceImpl) sync(ctx context.Context, parent handover.Handover) (handover.Handover, error) {
	total, done, err := s.HandoverRepository.CountItems(ctx, parent.ID)
	if err != nil {
		return handover.Handover{}, fmt.Errorf("count handover items: %w", err)
	}

	next := handover.Aggregate(parent.Status, total, done, s.revertOnReopen)
	if next == parent.Status {
		return parent, nil
	}
	return s.HandoverRepository.UpdateStatus(ctx, parent.ID, next)
}

func (s *HandoverServiceImpl) notifyCompleted(ctx context.Context, h handover.Handover) {
	if s.notifications == nil {
		return
	}
	recipient := h.EmployeeID
	if h.ManagerID != nil {
		recipient = *h.ManagerID
	}
	err := s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: recipient,
		Type:        notification.TypeHandoverCompleted,
		Title:       "Handover completed",
		Message:     "All handover items are done",
		Data:        map[string]any{"handover_id": h.ID},
	})
	if err != nil {
		slog.Warn("failed to queue notification", "type", notification.TypeHandoverCompleted, "handover_id", h.ID, "error", err)
	}
}
