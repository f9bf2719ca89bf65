package leave

import "context"

// LeaveService decides leave requests and keeps attendance in step with them.
type LeaveService interface {
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveRequest, error)
	Get(ctx context.Context, id string) (LeaveRequest, error)
	ListMy(ctx context.Context, employeeID string, statuses []Status) ([]LeaveRequest, error)
	ListPending(ctx context.Context, req ListPendingRequest) ([]LeaveRequest, error)
	Filter(ctx context.Context, req FilterLeaveRequest) ([]LeaveRequest, error)

	// ApproveAndLink approves the request. With doLink every attendance row
	// of the employee inside the range is linked and active rows are canceled.
	ApproveAndLink(ctx context.Context, leaveID, managerID string, doLink bool) (LeaveRequest, error)
	Reject(ctx context.Context, leaveID, managerID string) (LeaveRequest, error)

	// Cancel cancels the request and unlinks its attendance rows.
	Cancel(ctx context.Context, leaveID, actorID string) (LeaveRequest, error)

	// Delete unlinks attendance and removes the request.
	Delete(ctx context.Context, leaveID string) error
}
