package postgresql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/proposal"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/apperror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestLockMethodsRequireTransaction(t *testing.T) {
	mock := newMock(t)
	ctx := context.Background()

	_, err := NewAttendanceRepository(mock).LockByID(ctx, "a-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewAttendanceRepository(mock).LockByEmployeeDateRange(ctx, "emp-1", time.Now(), time.Now())
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewAttendanceRepository(mock).LockByLeave(ctx, "leave-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewLeaveRequestRepository(mock).LockByID(ctx, "leave-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewShiftRepository(mock).LockByID(ctx, "shift-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewHandoverRepository(mock).LockByID(ctx, "h-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewHandoverRepository(mock).LockItem(ctx, "i-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	_, err = NewProposalRepository(mock).LockByID(ctx, "p-1")
	assert.ErrorIs(t, err, ErrLockOutsideTransaction)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockByIDInsideTransaction_NotFound(t *testing.T) {
	mock := newMock(t)
	tm := NewTransactionManager(mock, 0)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectQuery(regexp.QuoteMeta("FROM leave_requests WHERE id = $1 FOR UPDATE")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockByID(ctx, "missing")
		return err
	})

	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLockTimeoutIsConcurrencyError(t *testing.T) {
	mock := newMock(t)
	tm := NewTransactionManager(mock, 200*time.Millisecond)
	repo := NewAttendanceRepository(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = '200ms'")).WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendances")).
		WillReturnError(&pgconn.PgError{Code: lockNotAvailableCode})
	mock.ExpectRollback()

	err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := repo.LockByEmployeeDateRange(ctx, "emp-1", time.Now(), time.Now())
		return err
	})

	assert.ErrorIs(t, err, apperror.ErrConcurrency)
	assert.True(t, apperror.IsRetryable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceGetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewAttendanceRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendances WHERE id = $1")).
		WithArgs("a-404").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "a-404")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceGetByID_MalformedID(t *testing.T) {
	mock := newMock(t)
	repo := NewAttendanceRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendances WHERE id = $1")).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: invalidTextCode})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceCreate_UnknownShift(t *testing.T) {
	mock := newMock(t)
	repo := NewAttendanceRepository(mock)
	shiftID := "0190c6a2-0000-7000-8000-000000000001"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendances")).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

	_, err := repo.Create(context.Background(), attendance.Attendance{
		EmployeeID:      "emp-1",
		Date:            time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		ShiftTemplateID: &shiftID,
		Status:          attendance.StatusPending,
		IsValid:         true,
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceUpdate_PersistsLeaveCancelMarker(t *testing.T) {
	mock := newMock(t)
	repo := NewAttendanceRepository(mock)
	now := time.Now()
	a := attendance.Attendance{ID: "a-1", Status: attendance.StatusPending, IsValid: true}
	a.LinkLeave("leave-1")

	args := make([]any, 16)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[0], args[9], args[10], args[14] = "a-1", attendance.StatusCanceled, false, true

	mock.ExpectQuery(regexp.QuoteMeta("canceled_by_leave = $15")).
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	got, err := repo.Update(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, got.CanceledByLeave)
	assert.Equal(t, now, got.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftCreate_DuplicateCode(t *testing.T) {
	mock := newMock(t)
	repo := NewShiftRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shift_templates")).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

	_, err := repo.Create(context.Background(), shift.Template{Code: "S1", Name: "Morning"})
	assert.ErrorIs(t, err, shift.ErrShiftCodeExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftSoftDelete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewShiftRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shift_templates")).
		WithArgs("shift-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SoftDelete(context.Background(), "shift-1")
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewLeaveRequestRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leave_requests")).
		WithArgs("leave-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leave_requests")).
		WithArgs("leave-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Delete(context.Background(), "leave-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "leave-2"), leave.ErrLeaveRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandoverCreate(t *testing.T) {
	mock := newMock(t)
	repo := NewHandoverRepository(mock)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO handovers")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("h-1", now, now))

	h, err := repo.Create(context.Background(), handover.Handover{EmployeeID: "emp-1", Status: handover.StatusOpen})
	require.NoError(t, err)
	assert.Equal(t, "h-1", h.ID)
	assert.Equal(t, handover.StatusOpen, h.Status)
	assert.Equal(t, now, h.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandoverCreateItem_Assignee(t *testing.T) {
	mock := newMock(t)
	repo := NewHandoverRepository(mock)
	now := time.Now()
	assignee := "emp-7"

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO handover_items (handover_id, title, description, assignee_id, status)")).
		WithArgs("h-1", "vendor calls", "", &assignee, string(handover.ItemPending)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("i-1", now, now))

	item, err := repo.CreateItem(context.Background(), handover.Item{HandoverID: "h-1", Title: "vendor calls", AssigneeID: &assignee, Status: handover.ItemPending})
	require.NoError(t, err)
	assert.Equal(t, "i-1", item.ID)
	require.NotNil(t, item.AssigneeID)
	assert.Equal(t, "emp-7", *item.AssigneeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandoverCountItems(t *testing.T) {
	mock := newMock(t)
	repo := NewHandoverRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE status = 'DONE')")).
		WithArgs("h-1").
		WillReturnRows(pgxmock.NewRows([]string{"total", "done"}).AddRow(3, 2))

	total, done, err := repo.CountItems(context.Background(), "h-1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, done)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandoverUpdateItem_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewHandoverRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE handover_items")).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateItem(context.Background(), handover.Item{ID: "i-1", Status: handover.ItemDone})
	assert.ErrorIs(t, err, handover.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProposalGetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProposalRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM proposals WHERE id = $1")).
		WithArgs("p-404").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "p-404")
	assert.ErrorIs(t, err, proposal.ErrProposalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationCreateBatch(t *testing.T) {
	mock := newMock(t)
	repo := NewNotificationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("($1, $2, $3, $4, $5, $6, $7, $8, $9), ($10, $11, $12, $13, $14, $15, $16, $17, $18)")).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	err := repo.CreateBatch(context.Background(), []notification.Notification{
		{RecipientID: "emp-1", Type: notification.TypeLeaveApproved, Title: "Leave approved"},
		{RecipientID: "emp-2", Type: notification.TypeHandoverCompleted, Title: "Handover completed"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMarkAsRead(t *testing.T) {
	mock := newMock(t)
	repo := NewNotificationRepository(mock)

	require.NoError(t, repo.MarkAsRead(context.Background(), nil, "emp-1"))

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ANY($1) AND recipient_id = $2")).
		WithArgs([]string{"n-1", "n-2"}, "emp-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	require.NoError(t, repo.MarkAsRead(context.Background(), []string{"n-1", "n-2"}, "emp-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
