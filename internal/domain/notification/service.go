package notification

import (
	"context"
)

// Queuer accepts notifications for asynchronous delivery. Callers enqueue
// only after their own transaction has committed.
type Queuer interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
}

// Service defines the notification service interface
type Service interface {
	Queuer

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error

	// Stop flushes pending batches and waits for the workers.
	Stop()
}
