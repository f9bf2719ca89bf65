package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	BatchRegister(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Punch(w http.ResponseWriter, r *http.Request)
	Recompute(w http.ResponseWriter, r *http.Request)
	UpdateTimes(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	MarkPending(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// authorize resolves the {id} record for callers that are not managers and
// rejects rows owned by another employee.
func (h *attendanceHandlerImpl) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return "", false
	}
	id := chi.URLParam(r, "id")
	if actor.IsManager() {
		return id, true
	}
	a, err := h.attendanceService.Get(r.Context(), id)
	if err == nil {
		err = checkOwner(actor, a.EmployeeID)
	}
	if err != nil {
		response.HandleError(w, err)
		return "", false
	}
	return id, true
}

func (h *attendanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req attendance.CreateAttendanceRequest
	if !decodeJSON(w, r, "CreateAttendance", &req) {
		return
	}
	if err := checkOwner(actor, req.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	a, err := h.attendanceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Attendance created successfully", attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) BatchRegister(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req attendance.BatchRegisterRequest
	if !decodeJSON(w, r, "BatchRegister", &req) {
		return
	}
	for _, item := range req.Items {
		if err := checkOwner(actor, item.EmployeeID); err != nil {
			response.HandleError(w, err)
			return
		}
	}

	records, err := h.attendanceService.BatchRegister(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		out = append(out, attendance.NewAttendanceResponse(a))
	}
	response.Created(w, "Attendance registered successfully", out)
}

func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	employeeID, err := scopeToCaller(actor, optionalQuery(r, "employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req := attendance.ListAttendanceRequest{
		EmployeeID: employeeID,
		From:       optionalQuery(r, "from"),
		To:         optionalQuery(r, "to"),
		Status:     optionalQuery(r, "status"),
		Limit:      getIntQueryParam(r, "limit", 0),
	}

	records, err := h.attendanceService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		out = append(out, attendance.NewAttendanceResponse(a))
	}
	response.Success(w, out)
}

func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	a, err := h.attendanceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		err = checkOwner(actor, a.EmployeeID)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req attendance.PunchRequest
	if !decodeJSON(w, r, "Punch", &req) {
		return
	}
	req.ID = id

	a, err := h.attendanceService.Punch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Punch recorded", attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	a, err := h.attendanceService.Recompute(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) UpdateTimes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	var req attendance.UpdateTimesRequest
	if !decodeJSON(w, r, "UpdateTimes", &req) {
		return
	}
	req.ID = id

	a, err := h.attendanceService.UpdateTimes(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance updated", attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	a, err := h.attendanceService.MarkApproved(r.Context(), chi.URLParam(r, "id"), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance approved", attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) MarkPending(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	a, err := h.attendanceService.MarkPending(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attendance.NewAttendanceResponse(a))
}

func (h *attendanceHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorize(w, r)
	if !ok {
		return
	}
	a, err := h.attendanceService.MarkCanceled(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance canceled", attendance.NewAttendanceResponse(a))
}
