package shift

import "context"

type ShiftRepository interface {
	Create(ctx context.Context, t Template) (Template, error)

	// GetByID returns an active template.
	GetByID(ctx context.Context, id string) (Template, error)

	// GetSnapshot returns a template by id, soft-deleted versions included.
	GetSnapshot(ctx context.Context, id string) (Template, error)

	GetByCode(ctx context.Context, code string) (Template, error)
	List(ctx context.Context, filter ShiftFilter) ([]Template, error)

	// LockByID reads an active template under an exclusive row lock.
	// Must run inside a transaction.
	LockByID(ctx context.Context, id string) (Template, error)

	SoftDelete(ctx context.Context, id string) error
}

// SnapshotCache stores shift templates by id.
type SnapshotCache interface {
	Get(ctx context.Context, id string) (Template, bool, error)
	Set(ctx context.Context, t Template) error
	Invalidate(ctx context.Context, id string) error
}
