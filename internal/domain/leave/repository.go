package leave

import "context"

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error)

	// LockByID reads the request under an exclusive row lock. Requires a transaction.
	LockByID(ctx context.Context, id string) (LeaveRequest, error)

	// UpdateDecision persists status, decided_by and decision_ts.
	UpdateDecision(ctx context.Context, request LeaveRequest) (LeaveRequest, error)

	Delete(ctx context.Context, id string) error
}
