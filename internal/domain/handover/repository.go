package handover

import "context"

type HandoverRepository interface {
	Create(ctx context.Context, h Handover) (Handover, error)
	GetByID(ctx context.Context, id string) (Handover, error)
	List(ctx context.Context, filter HandoverFilter) ([]Handover, error)

	// LockByID reads the handover under an exclusive row lock. Requires a transaction.
	LockByID(ctx context.Context, id string) (Handover, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Handover, error)

	CreateItem(ctx context.Context, item Item) (Item, error)
	GetItem(ctx context.Context, id string) (Item, error)
	// LockItem reads the item under an exclusive row lock. Requires a transaction.
	LockItem(ctx context.Context, id string) (Item, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	ListItems(ctx context.Context, handoverID string) ([]Item, error)

	// CountItems returns the number of items and how many of them are DONE.
	CountItems(ctx context.Context, handoverID string) (total, done int, err error)
}
