package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

// AttendanceRepository defines data access methods for attendance records.
// Lock* methods take exclusive row locks and fail outside a transaction.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// CreateBatch inserts all records in one statement
	CreateBatch(ctx context.Context, attendances []Attendance) ([]Attendance, error)

	GetByID(ctx context.Context, id string) (Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)

	// Update writes every mutable column of attendance
	Update(ctx context.Context, attendance Attendance) (Attendance, error)

	LockByID(ctx context.Context, id string) (Attendance, error)

	// LockByEmployeeDateRange locks the employee's records dated within
	// [from, to], in id order.
	LockByEmployeeDateRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	// LockByLeave locks the records linked to leaveID, in id order.
	LockByLeave(ctx context.Context, leaveID string) ([]Attendance, error)
}

// ShiftLookup resolves the shift snapshot a record is computed against.
type ShiftLookup interface {
	GetSnapshot(ctx context.Context, id string) (shift.Template, error)
}
