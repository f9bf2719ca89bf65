package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
)

type notificationRepository struct {
	db database.Querier
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db database.Querier) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at`

func scanNotification(row rowScanner) (notification.Notification, error) {
	var (
		n         notification.Notification
		dataJSON  []byte
		notifType string
	)
	if err := row.Scan(&n.ID, &n.RecipientID, &n.SenderID, &notifType, &n.Title, &n.Message, &dataJSON, &n.IsRead, &n.ReadAt, &n.CreatedAt); err != nil {
		return notification.Notification{}, err
	}
	n.Type = notification.NotificationType(notifType)
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return notification.Notification{}, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return n, nil
}

func notificationArgs(n *notification.Notification) ([]any, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}
	return []any{n.ID, n.RecipientID, n.SenderID, string(n.Type), n.Title, n.Message, dataJSON, n.IsRead, n.CreatedAt}, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	return r.CreateBatch(ctx, []notification.Notification{n})
}

// CreateBatch inserts all notifications with one statement.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const perRow = 9
	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]any, 0, len(notifications)*perRow)

	for i := range notifications {
		args, err := notificationArgs(&notifications[i])
		if err != nil {
			return err
		}
		placeholders := make([]string, perRow)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*perRow+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := `
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES ` + strings.Join(valueStrings, ", ")

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return translatePgError(fmt.Errorf("failed to create notifications: %w", err))
	}
	return nil
}

// ListByUser returns one page of the user's inbox, newest first, and the
// total number of matching rows.
func (r *notificationRepository) ListByUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "recipient_id = $1"
	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE "+whereClause, userID).Scan(&total); err != nil {
		return nil, 0, translatePgError(fmt.Errorf("failed to count notifications: %w", err))
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + whereClause + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := q.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, translatePgError(fmt.Errorf("failed to query notifications: %w", err))
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, translatePgError(fmt.Errorf("failed to count unread notifications: %w", err))
	}
	return count, nil
}

// MarkAsRead marks the given notifications of userID as read. Ids owned by
// someone else are ignored.
func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = true, read_at = NOW()
		WHERE id = ANY($1) AND recipient_id = $2 AND is_read = false
	`
	if _, err := q.Exec(ctx, query, ids, userID); err != nil {
		return translatePgError(fmt.Errorf("failed to mark notifications as read: %w", err))
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = true, read_at = NOW()
		WHERE recipient_id = $1 AND is_read = false
	`
	if _, err := q.Exec(ctx, query, userID); err != nil {
		return translatePgError(fmt.Errorf("failed to mark all notifications as read: %w", err))
	}
	return nil
}
