package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/proposal"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ProposalHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	UpdateDecisionNote(w http.ResponseWriter, r *http.Request)
}

type proposalHandlerImpl struct {
	proposalService proposal.ProposalService
}

func NewProposalHandler(proposalService proposal.ProposalService) ProposalHandler {
	return &proposalHandlerImpl{proposalService: proposalService}
}

type decisionNoteRequest struct {
	DecisionNote string `json:"decision_note"`
}

func (h *proposalHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req proposal.CreateProposalRequest
	if !decodeJSON(w, r, "CreateProposal", &req) {
		return
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	if err := checkOwner(actor, req.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	p, err := h.proposalService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Proposal submitted successfully", proposal.NewProposalResponse(p))
}

func (h *proposalHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	employeeID, err := scopeToCaller(actor, optionalQuery(r, "employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	proposals, err := h.proposalService.Filter(r.Context(), proposal.FilterProposalRequest{
		EmployeeID: employeeID,
		ManagerID:  optionalQuery(r, "manager_id"),
		Status:     optionalQuery(r, "status"),
		Limit:      getIntQueryParam(r, "limit", 0),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	out := make([]proposal.ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		out = append(out, proposal.NewProposalResponse(p))
	}
	response.Success(w, out)
}

func (h *proposalHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	p, err := h.proposalService.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		err = checkOwner(actor, p.EmployeeID)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, proposal.NewProposalResponse(p))
}

func (h *proposalHandlerImpl) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req proposal.SetStatusRequest
	if !decodeJSON(w, r, "SetProposalStatus", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	p, err := h.proposalService.SetStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, proposal.NewProposalResponse(p))
}

func (h *proposalHandlerImpl) UpdateDecisionNote(w http.ResponseWriter, r *http.Request) {
	var req decisionNoteRequest
	if !decodeJSON(w, r, "UpdateDecisionNote", &req) {
		return
	}

	p, err := h.proposalService.UpdateDecisionNote(r.Context(), chi.URLParam(r, "id"), req.DecisionNote)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, proposal.NewProposalResponse(p))
}
