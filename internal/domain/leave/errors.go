package leave

import "github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"

var (
	ErrLeaveRequestNotFound = apperror.New(apperror.ErrNotFound, "leave request not found")
	ErrInvalidTransition    = apperror.New(apperror.ErrInvalidArgument, "leave request cannot move to that status")
	ErrInvalidStatus        = apperror.New(apperror.ErrInvalidArgument, "status must be SUBMITTED, APPROVED, REJECTED or CANCELLED")
)
