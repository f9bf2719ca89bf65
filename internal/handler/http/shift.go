package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ShiftHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetByCode(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

func (h *shiftHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req shift.CreateShiftRequest
	if !decodeJSON(w, r, "CreateShift", &req) {
		return
	}

	t, err := h.shiftService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Shift template created successfully", shift.NewShiftResponse(t))
}

// List accepts ?q= for a code or name fragment and ?overnight=true|false.
func (h *shiftHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := shift.ShiftFilter{Query: r.URL.Query().Get("q")}
	if r.URL.Query().Get("overnight") != "" {
		overnight := getBoolQueryParam(r, "overnight", false)
		filter.Overnight = &overnight
	}

	templates, err := h.shiftService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]shift.ShiftResponse, 0, len(templates))
	for _, t := range templates {
		out = append(out, shift.NewShiftResponse(t))
	}
	response.Success(w, out)
}

func (h *shiftHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.shiftService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, shift.NewShiftResponse(t))
}

func (h *shiftHandlerImpl) GetByCode(w http.ResponseWriter, r *http.Request) {
	t, err := h.shiftService.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, shift.NewShiftResponse(t))
}

// Update retires the current version and returns the new one.
func (h *shiftHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req shift.UpdateShiftRequest
	if !decodeJSON(w, r, "UpdateShift", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	t, err := h.shiftService.UpdateVersioned(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift template updated successfully", shift.NewShiftResponse(t))
}

func (h *shiftHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.shiftService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Shift template deleted successfully", nil)
}
