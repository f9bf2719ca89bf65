package proposal

import "github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"

var (
	ErrProposalNotFound = apperror.New(apperror.ErrNotFound, "proposal not found")
	ErrInvalidType      = apperror.New(apperror.ErrInvalidArgument, "type must be RESIGN, SALARY_INCREASE or CONTRIBUTION")
	ErrInvalidStatus    = apperror.New(apperror.ErrInvalidArgument, "status must be NEW, APPROVED or REJECTED")
	ErrAlreadyDecided   = apperror.New(apperror.ErrConflict, "proposal has already been decided")
)
