package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveSubmitted    NotificationType = "leave_submitted"
	TypeLeaveApproved     NotificationType = "leave_approved"
	TypeLeaveRejected     NotificationType = "leave_rejected"
	TypeLeaveCancelled    NotificationType = "leave_cancelled"
	TypeHandoverCompleted NotificationType = "handover_completed"
	TypeProposalDecided   NotificationType = "proposal_decided"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]any
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
