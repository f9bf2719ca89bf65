package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/proposal"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database/dbtest"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	attendanceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	handoverService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/handover"
	leaveService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/leave"
	proposalService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/proposal"
	shiftService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inbox is an in-memory notification.Service.
type inbox struct {
	mu    sync.Mutex
	items []notification.CreateNotificationRequest
	read  map[string]bool
}

func (b *inbox) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, req)
	return nil
}

func (b *inbox) forUser(userID string) []notification.CreateNotificationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []notification.CreateNotificationRequest
	for _, n := range b.items {
		if n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (b *inbox) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	mine := b.forUser(userID)
	resp := &notification.NotificationListResponse{Total: len(mine), UnreadCount: len(mine), Page: page, PageSize: pageSize}
	for _, n := range mine {
		resp.Notifications = append(resp.Notifications, notification.NotificationResponse{Type: n.Type, Title: n.Title, Message: n.Message})
	}
	return resp, nil
}

func (b *inbox) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	if b.read[userID] {
		return 0, nil
	}
	return len(b.forUser(userID)), nil
}

func (b *inbox) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	return req.Validate()
}

func (b *inbox) MarkAllAsRead(ctx context.Context, userID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.read == nil {
		b.read = map[string]bool{}
	}
	b.read[userID] = true
	return nil
}

func (b *inbox) Stop() {}

type testServer struct {
	router http.Handler
	jwt    jwt.Service
	inbox  *inbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tx := dbtest.NewTransactor()
	m := metrics.New()
	box := &inbox{}

	shifts := shiftService.NewShiftService(tx, dbtest.NewTemplateStore(tx), nil, m)
	attendanceRepo := dbtest.NewAttendanceStore(tx)

	jwtSvc := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	router := NewRouter(
		config.AppConfig{Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		jwtSvc,
		m,
		NewAttendanceHandler(attendanceService.NewAttendanceService(tx, attendanceRepo, shifts, m, nil)),
		NewLeaveHandler(leaveService.NewLeaveService(tx, dbtest.NewLeaveStore(tx), attendanceRepo, box, m, leave.UnlinkKeepStatus)),
		NewHandoverHandler(handoverService.NewHandoverService(tx, dbtest.NewHandoverStore(tx), box, m, false)),
		NewShiftHandler(shifts),
		NewProposalHandler(proposalService.NewProposalService(tx, dbtest.NewProposalStore(tx), box, m)),
		NewNotificationHandler(box),
	)
	return &testServer{router: router, jwt: jwtSvc, inbox: box}
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Meta    *response.Meta `json:"meta"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, userID, role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, _, err := s.jwt.GenerateAccessToken(userID, &userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "", "", http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "", "", http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, "", "", http.MethodGet, "/api/v1/attendance", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AttendanceLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/shifts", map[string]any{
		"code": "DAY", "name": "Day shift", "start_time": "09:00", "end_time": "17:00", "break_minutes": 60,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	createdShift := decode[shift.ShiftResponse](t, rec).Data

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance", map[string]any{
		"employee_id": "emp-1", "date": "2024-05-06", "shift_template_id": createdShift.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[attendance.AttendanceResponse](t, rec).Data
	assert.Equal(t, attendance.StatusPending, record.Status)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance/"+record.ID+"/punch",
		map[string]any{"direction": "in", "when": "2024-05-06T09:10:00Z"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance/"+record.ID+"/punch",
		map[string]any{"direction": "out", "when": "2024-05-06T17:00:00Z"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	record = decode[attendance.AttendanceResponse](t, rec).Data
	assert.Equal(t, 10, record.LateMinutes)
	assert.Equal(t, 410, record.WorkMinutes)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance/"+record.ID+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/attendance/"+record.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	record = decode[attendance.AttendanceResponse](t, rec).Data
	assert.Equal(t, attendance.StatusApproved, record.Status)
	require.NotNil(t, record.ApprovedBy)
	assert.Equal(t, "mgr-1", *record.ApprovedBy)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/attendance/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance", map[string]any{"employee_id": "emp-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode[any](t, rec)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "date")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaves", bytes.NewBufferString("{not json"))
	token, _, err := s.jwt.GenerateAccessToken("emp-1", nil, jwt.RoleEmployee)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LeaveApprovalLinksAttendance(t *testing.T) {
	s := newTestServer(t)

	var attendanceIDs []string
	for _, date := range []string{"2024-05-06", "2024-05-07"} {
		rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance", map[string]any{
			"employee_id": "emp-1", "date": date,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		attendanceIDs = append(attendanceIDs, decode[attendance.AttendanceResponse](t, rec).Data.ID)
	}

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/leaves", map[string]any{
		"start_date": "2024-05-06", "end_date": "2024-05-08", "leave_type": "ANNUAL", "reason": "family trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	request := decode[leave.LeaveRequestResponse](t, rec).Data
	assert.Equal(t, "emp-1", request.EmployeeID)
	assert.Equal(t, leave.StatusSubmitted, request.Status)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/leaves/"+request.ID+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodGet, "/api/v1/leaves/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]leave.LeaveRequestResponse](t, rec).Data, 1)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/leaves/"+request.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	request = decode[leave.LeaveRequestResponse](t, rec).Data
	assert.Equal(t, leave.StatusApproved, request.Status)
	require.NotNil(t, request.DecidedBy)
	assert.Equal(t, "mgr-1", *request.DecidedBy)

	for _, id := range attendanceIDs {
		rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/attendance/"+id, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		record := decode[attendance.AttendanceResponse](t, rec).Data
		assert.Equal(t, attendance.StatusCanceled, record.Status)
		assert.False(t, record.IsValid)
		require.NotNil(t, record.OnLeave)
		assert.Equal(t, request.ID, *record.OnLeave)
	}

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/leaves/my?status=APPROVED", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]leave.LeaveRequestResponse](t, rec).Data, 1)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[notification.UnreadCountResponse](t, rec).Data.UnreadCount)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/leaves/"+request.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, leave.StatusCancelled, decode[leave.LeaveRequestResponse](t, rec).Data.Status)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/leaves/"+request.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HandoverCompletes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/handovers", map[string]any{
		"manager_id": "mgr-1", "receiver_employee_id": "emp-2", "note": "vacation cover",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ho := decode[handover.HandoverResponse](t, rec).Data
	assert.Equal(t, handover.StatusOpen, ho.Status)

	var itemIDs []string
	for _, title := range []string{"Share reports", "Rotate on-call"} {
		rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/handovers/"+ho.ID+"/items", map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		change := decode[handover.ItemChangeResponse](t, rec).Data
		assert.Equal(t, handover.StatusInProgress, change.Handover.Status)
		itemIDs = append(itemIDs, change.Item.ID)
	}

	var last handover.ItemChangeResponse
	for _, id := range itemIDs {
		rec = s.do(t, "emp-2", jwt.RoleEmployee, http.MethodPut, "/api/v1/handovers/items/"+id+"/status", map[string]any{"status": "DONE"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		last = decode[handover.ItemChangeResponse](t, rec).Data
	}
	assert.Equal(t, handover.StatusDone, last.Handover.Status)
	assert.Len(t, s.inbox.forUser("mgr-1"), 1)

	rec = s.do(t, "emp-2", jwt.RoleEmployee, http.MethodPut, "/api/v1/handovers/items/"+itemIDs[0]+"/status", map[string]any{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ShiftVersioning(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/shifts", map[string]any{
		"code": "NIGHT", "name": "Night", "start_time": "22:00", "end_time": "06:00", "overnight": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	original := decode[shift.ShiftResponse](t, rec).Data

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/shifts", map[string]any{
		"code": "NIGHT", "name": "Duplicate", "start_time": "22:00", "end_time": "06:00", "overnight": true,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPut, "/api/v1/shifts/"+original.ID, map[string]any{"break_minutes": 30})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[shift.ShiftResponse](t, rec).Data
	assert.NotEqual(t, original.ID, next.ID)
	assert.Equal(t, 30, next.BreakMinutes)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/shifts/code/NIGHT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, next.ID, decode[shift.ShiftResponse](t, rec).Data.ID)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/shifts/"+original.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ProposalDecision(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/proposals", map[string]any{
		"type": "SALARY_INCREASE", "title": "Raise", "content": "Two years in role",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[proposal.ProposalResponse](t, rec).Data
	assert.Equal(t, proposal.StatusNew, p.Status)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPut, "/api/v1/proposals/"+p.ID+"/status", map[string]any{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, proposal.StatusApproved, decode[proposal.ProposalResponse](t, rec).Data.Status)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPut, "/api/v1/proposals/"+p.ID+"/status", map[string]any{"status": "REJECTED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/notifications?page_size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listEnv := decode[notification.NotificationListResponse](t, rec)
	assert.Equal(t, 1, listEnv.Data.Total)
	require.NotNil(t, listEnv.Meta)
	assert.Equal(t, 1, listEnv.Meta.Page)
	assert.Equal(t, 10, listEnv.Meta.Limit)
	assert.EqualValues(t, 1, listEnv.Meta.TotalItems)
	assert.Equal(t, 1, listEnv.Meta.TotalPages)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/notifications/read", map[string]any{"notification_ids": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/notifications/unread-count", nil)
	assert.Equal(t, 0, decode[notification.UnreadCountResponse](t, rec).Data.UnreadCount)
}

func TestRouter_EmployeesTouchOnlyTheirOwnRecords(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance", map[string]any{
		"employee_id": "emp-1", "date": "2024-05-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[attendance.AttendanceResponse](t, rec).Data

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/leaves", map[string]any{
		"start_date": "2024-05-10", "end_date": "2024-05-10", "leave_type": "SICK", "reason": "flu",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	request := decode[leave.LeaveRequestResponse](t, rec).Data

	forbidden := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/v1/attendance/" + record.ID, nil},
		{http.MethodPost, "/api/v1/attendance/" + record.ID + "/punch", map[string]any{"direction": "in", "when": "2024-05-06T09:00:00Z"}},
		{http.MethodPost, "/api/v1/attendance/" + record.ID + "/recompute", nil},
		{http.MethodPut, "/api/v1/attendance/" + record.ID + "/times", map[string]any{"ts_in": "2024-05-06T09:00:00Z"}},
		{http.MethodPost, "/api/v1/attendance/" + record.ID + "/pending", nil},
		{http.MethodPost, "/api/v1/attendance/" + record.ID + "/cancel", nil},
		{http.MethodPost, "/api/v1/attendance", map[string]any{"employee_id": "emp-1", "date": "2024-05-07"}},
		{http.MethodPost, "/api/v1/attendance/batch", map[string]any{"items": []map[string]any{{"employee_id": "emp-1", "date": "2024-05-08"}}}},
		{http.MethodGet, "/api/v1/attendance?employee_id=emp-1", nil},
		{http.MethodGet, "/api/v1/leaves/" + request.ID, nil},
		{http.MethodPost, "/api/v1/leaves/" + request.ID + "/cancel", nil},
		{http.MethodPost, "/api/v1/leaves", map[string]any{"employee_id": "emp-1", "start_date": "2024-05-11", "end_date": "2024-05-11", "leave_type": "SICK"}},
	}
	for _, tc := range forbidden {
		rec = s.do(t, "emp-2", jwt.RoleEmployee, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s %s: %s", tc.method, tc.path, rec.Body.String())
	}

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodGet, "/api/v1/leaves/"+request.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, leave.StatusSubmitted, decode[leave.LeaveRequestResponse](t, rec).Data.Status)

	rec = s.do(t, "emp-2", jwt.RoleEmployee, http.MethodGet, "/api/v1/attendance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]attendance.AttendanceResponse](t, rec).Data)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/attendance/"+record.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, attendance.StatusCanceled, decode[attendance.AttendanceResponse](t, rec).Data.Status)

	rec = s.do(t, "mgr-1", jwt.RoleManager, http.MethodPost, "/api/v1/leaves/"+request.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, leave.StatusCancelled, decode[leave.LeaveRequestResponse](t, rec).Data.Status)
}

func TestRouter_MalformedIDsAreNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/v1/attendance/not-a-uuid",
		"/api/v1/leaves/not-a-uuid",
		"/api/v1/handovers/not-a-uuid",
		"/api/v1/shifts/not-a-uuid",
		"/api/v1/proposals/not-a-uuid",
	} {
		rec := s.do(t, "mgr-1", jwt.RoleManager, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/attendance/not-a-uuid/punch", map[string]any{"direction": "in"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/notifications/read", map[string]any{"notification_ids": []string{"n-1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_HandoverVisibility(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/handovers", map[string]any{
		"receiver_employee_id": "emp-2", "note": "parental leave",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ho := decode[handover.HandoverResponse](t, rec).Data

	rec = s.do(t, "emp-1", jwt.RoleEmployee, http.MethodPost, "/api/v1/handovers/"+ho.ID+"/items", map[string]any{
		"title": "Vendor calls", "assignee_id": "emp-3",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode[handover.ItemChangeResponse](t, rec).Data.Item
	require.NotNil(t, item.AssigneeID)
	assert.Equal(t, "emp-3", *item.AssigneeID)

	for _, viewer := range []string{"emp-1", "emp-2", "emp-3"} {
		rec = s.do(t, viewer, jwt.RoleEmployee, http.MethodGet, "/api/v1/handovers/"+ho.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code, viewer)
	}

	rec = s.do(t, "emp-4", jwt.RoleEmployee, http.MethodGet, "/api/v1/handovers/"+ho.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "emp-2", jwt.RoleEmployee, http.MethodPost, "/api/v1/handovers/"+ho.ID+"/items", map[string]any{"title": "extra"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, "emp-2", jwt.RoleEmployee, http.MethodPost, "/api/v1/handovers", map[string]any{"employee_id": "emp-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
