package shift

import "context"

type ShiftService interface {
	Create(ctx context.Context, req CreateShiftRequest) (Template, error)
	Get(ctx context.Context, id string) (Template, error)
	GetByCode(ctx context.Context, code string) (Template, error)
	List(ctx context.Context, filter ShiftFilter) ([]Template, error)

	// UpdateVersioned retires the active version of id and returns its replacement.
	UpdateVersioned(ctx context.Context, req UpdateShiftRequest) (Template, error)
	Delete(ctx context.Context, id string) error
}
