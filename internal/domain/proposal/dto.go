package proposal

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type CreateProposalRequest struct {
	EmployeeID string  `json:"employee_id"`
	ManagerID  *string `json:"manager_id,omitempty"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
}

func (r CreateProposalRequest) Proposal() (Proposal, error) {
	var errs validator.ValidationErrors
	p := Proposal{
		EmployeeID: r.EmployeeID,
		ManagerID:  r.ManagerID,
		Title:      r.Title,
		Content:    r.Content,
		Status:     StatusNew,
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if t, err := ParseType(r.Type); err == nil {
		p.Type = t
	} else {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be RESIGN, SALARY_INCREASE or CONTRIBUTION"})
	}
	if len(errs) > 0 {
		return Proposal{}, errs
	}
	return p, nil
}

type SetStatusRequest struct {
	ID           string  `json:"-"`
	Status       string  `json:"status"`
	DecisionNote *string `json:"decision_note,omitempty"`
}

type FilterProposalRequest struct {
	EmployeeID *string
	ManagerID  *string
	Status     *string
	Limit      int
}

func (r FilterProposalRequest) Filter() (ProposalFilter, error) {
	f := ProposalFilter{EmployeeID: r.EmployeeID, ManagerID: r.ManagerID, Limit: r.Limit}
	if r.Status != nil {
		st, err := ParseStatus(*r.Status)
		if err != nil {
			return ProposalFilter{}, err
		}
		f.Status = &st
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return f, nil
}

type ProposalResponse struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	ManagerID    *string   `json:"manager_id,omitempty"`
	Type         Type      `json:"type"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Status       Status    `json:"status"`
	DecisionNote *string   `json:"decision_note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewProposalResponse(p Proposal) ProposalResponse {
	return ProposalResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		ManagerID:    p.ManagerID,
		Type:         p.Type,
		Title:        p.Title,
		Content:      p.Content,
		Status:       p.Status,
		DecisionNote: p.DecisionNote,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
