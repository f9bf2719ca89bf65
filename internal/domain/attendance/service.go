package attendance

import "context"

// AttendanceService owns the lifecycle of attendance records. Every
// mutating method runs in one transaction holding the record's row lock.
type AttendanceService interface {
	Create(ctx context.Context, req CreateAttendanceRequest) (Attendance, error)

	// BatchRegister inserts all items atomically. No items, no error.
	BatchRegister(ctx context.Context, req BatchRegisterRequest) ([]Attendance, error)

	Get(ctx context.Context, id string) (Attendance, error)
	List(ctx context.Context, req ListAttendanceRequest) ([]Attendance, error)

	Punch(ctx context.Context, req PunchRequest) (Attendance, error)

	// Recompute re-derives minutes from the stored punches.
	Recompute(ctx context.Context, id string) (Attendance, error)

	UpdateTimes(ctx context.Context, req UpdateTimesRequest) (Attendance, error)

	MarkApproved(ctx context.Context, id string, approverID string) (Attendance, error)
	MarkPending(ctx context.Context, id string) (Attendance, error)
	MarkCanceled(ctx context.Context, id string) (Attendance, error)
}
