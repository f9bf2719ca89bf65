package handover

import "context"

// HandoverService keeps the handover status in step with its items.
type HandoverService interface {
	Create(ctx context.Context, req CreateHandoverRequest) (Handover, error)
	Get(ctx context.Context, id string) (Handover, error)
	List(ctx context.Context, req ListHandoverRequest) ([]Handover, error)

	// AddItem inserts a PENDING item and recomputes the parent in the same
	// transaction.
	AddItem(ctx context.Context, handoverID string, req AddItemRequest) (ItemChange, error)

	// SetItemStatus updates the item and recomputes the parent under the
	// parent's row lock.
	SetItemStatus(ctx context.Context, req SetItemStatusRequest) (ItemChange, error)
}
