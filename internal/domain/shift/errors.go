package shift

import "github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"

// Shift domain errors
var (
	ErrShiftNotFound   = apperror.New(apperror.ErrNotFound, "shift template not found")
	ErrShiftCodeExists = apperror.New(apperror.ErrConflict, "shift template code already exists")
)
