package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/handover"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type HandoverHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	AddItem(w http.ResponseWriter, r *http.Request)
	SetItemStatus(w http.ResponseWriter, r *http.Request)
}

type handoverHandlerImpl struct {
	handoverService handover.HandoverService
}

func NewHandoverHandler(handoverService handover.HandoverService) HandoverHandler {
	return &handoverHandlerImpl{handoverService: handoverService}
}

func (h *handoverHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req handover.CreateHandoverRequest
	if !decodeJSON(w, r, "CreateHandover", &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	if err := checkOwner(actor, req.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.handoverService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Handover created successfully", handover.NewHandoverResponse(created))
}

func (h *handoverHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	handovers, err := h.handoverService.List(r.Context(), handover.ListHandoverRequest{
		EmployeeID: optionalQuery(r, "employee_id"),
		ReceiverID: optionalQuery(r, "receiver_id"),
		Status:     optionalQuery(r, "status"),
		Limit:      getIntQueryParam(r, "limit", 0),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]handover.HandoverResponse, 0, len(handovers))
	for _, ho := range handovers {
		out = append(out, handover.NewHandoverResponse(ho))
	}
	response.Success(w, out)
}

// canView admits the owner, the receiver and any item assignee.
func canView(actor middleware.Actor, ho handover.Handover) bool {
	if actor.CanActFor(ho.EmployeeID) {
		return true
	}
	if ho.ReceiverEmployeeID != nil && *ho.ReceiverEmployeeID == actor.EmployeeID {
		return true
	}
	for _, item := range ho.Items {
		if item.AssigneeID != nil && *item.AssigneeID == actor.EmployeeID {
			return true
		}
	}
	return false
}

func (h *handoverHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	ho, err := h.handoverService.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !canView(actor, ho) {
		err = errNotOwner
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, handover.NewHandoverResponse(ho))
}

// AddItem is open to the handover owner and managers.
func (h *handoverHandlerImpl) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if !actor.IsManager() {
		ho, err := h.handoverService.Get(r.Context(), id)
		if err == nil {
			err = checkOwner(actor, ho.EmployeeID)
		}
		if err != nil {
			response.HandleError(w, err)
			return
		}
	}
	var req handover.AddItemRequest
	if !decodeJSON(w, r, "AddItem", &req) {
		return
	}

	change, err := h.handoverService.AddItem(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Handover item added", handover.NewItemChangeResponse(change))
}

func (h *handoverHandlerImpl) SetItemStatus(w http.ResponseWriter, r *http.Request) {
	var req handover.SetItemStatusRequest
	if !decodeJSON(w, r, "SetItemStatus", &req) {
		return
	}
	req.ItemID = chi.URLParam(r, "itemID")

	change, err := h.handoverService.SetItemStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, handover.NewItemChangeResponse(change))
}
