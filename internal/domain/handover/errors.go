package handover

import "github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"

var (
	ErrHandoverNotFound  = apperror.New(apperror.ErrNotFound, "handover not found")
	ErrItemNotFound      = apperror.New(apperror.ErrNotFound, "handover item not found")
	ErrInvalidStatus     = apperror.New(apperror.ErrInvalidArgument, "status must be OPEN, IN_PROGRESS or DONE")
	ErrInvalidItemStatus = apperror.New(apperror.ErrInvalidArgument, "item status must be PENDING or DONE")
)
