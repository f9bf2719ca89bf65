package http

import (
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
	DeleteRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

func leaveResponses(requests []leave.LeaveRequest) []leave.LeaveRequestResponse {
	out := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, l := range requests {
		out = append(out, leave.NewLeaveRequestResponse(l))
	}
	return out
}

// CreateRequest implements LeaveHandler. The employee defaults to the caller.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req leave.CreateLeaveRequest
	if !decodeJSON(w, r, "CreateRequest", &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	if err := checkOwner(actor, req.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := l.leaveService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request submitted successfully", leave.NewLeaveRequestResponse(created))
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	req := leave.FilterLeaveRequest{
		EmployeeID: optionalQuery(r, "employee_id"),
		Status:     optionalQuery(r, "status"),
		LeaveType:  optionalQuery(r, "leave_type"),
		HandoverTo: optionalQuery(r, "handover_to"),
		DecidedBy:  optionalQuery(r, "decided_by"),
		StartFrom:  optionalQuery(r, "from"),
		EndTo:      optionalQuery(r, "to"),
		Limit:      getIntQueryParam(r, "limit", 0),
	}

	requests, err := l.leaveService.Filter(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, leaveResponses(requests))
}

// GetMyRequests implements LeaveHandler. ?status= takes a comma separated list.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var statuses []leave.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := leave.ParseStatus(part)
			if err != nil {
				response.HandleError(w, err)
				return
			}
			statuses = append(statuses, st)
		}
	}

	requests, err := l.leaveService.ListMy(r.Context(), actor.EmployeeID, statuses)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, leaveResponses(requests))
}

// ListPending implements LeaveHandler.
func (l *LeaveHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := l.leaveService.ListPending(r.Context(), leave.ListPendingRequest{
		From: optionalQuery(r, "from"),
		To:   optionalQuery(r, "to"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, leaveResponses(requests))
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	request, err := l.leaveService.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		err = checkOwner(actor, request.EmployeeID)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, leave.NewLeaveRequestResponse(request))
}

// ApproveRequest implements LeaveHandler. Attendance is linked unless the
// body sets link_attendance to false.
func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req leave.DecisionRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, "ApproveRequest", &req) {
		return
	}
	doLink := req.LinkAttendance == nil || *req.LinkAttendance

	approved, err := l.leaveService.ApproveAndLink(r.Context(), chi.URLParam(r, "id"), actor.UserID, doLink)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request approved successfully", leave.NewLeaveRequestResponse(approved))
}

// RejectRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	rejected, err := l.leaveService.Reject(r.Context(), chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request rejected successfully", leave.NewLeaveRequestResponse(rejected))
}

// CancelRequest implements LeaveHandler. Employees may cancel only their own
// requests.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !actor.IsManager() {
		request, err := l.leaveService.Get(r.Context(), id)
		if err == nil {
			err = checkOwner(actor, request.EmployeeID)
		}
		if err != nil {
			response.HandleError(w, err)
			return
		}
	}

	cancelled, err := l.leaveService.Cancel(r.Context(), id, actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request cancelled successfully", leave.NewLeaveRequestResponse(cancelled))
}

// DeleteRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := l.leaveService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request deleted successfully", nil)
}
