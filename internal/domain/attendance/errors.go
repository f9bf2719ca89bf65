package attendance

import "github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"

// Attendance domain errors
var (
	ErrAttendanceNotFound = apperror.New(apperror.ErrNotFound, "attendance record not found")
	ErrInvalidDirection   = apperror.New(apperror.ErrInvalidArgument, "direction must be in or out")
	ErrInvalidStatus      = apperror.New(apperror.ErrInvalidArgument, "status must be PENDING, APPROVED or CANCELED")
	ErrLinkedToLeave      = apperror.New(apperror.ErrInvalidArgument, "attendance is covered by an approved leave")
	ErrShiftNotFound      = apperror.New(apperror.ErrNotFound, "shift template for attendance not found")
)
