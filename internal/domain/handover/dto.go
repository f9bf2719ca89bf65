package handover

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type CreateHandoverRequest struct {
	EmployeeID         string  `json:"employee_id"`
	ManagerID          *string `json:"manager_id,omitempty"`
	ReceiverEmployeeID *string `json:"receiver_employee_id,omitempty"`
	DueDate            *string `json:"due_date,omitempty"`
	Note               string  `json:"note"`
}

func (r CreateHandoverRequest) Handover() (Handover, error) {
	var errs validator.ValidationErrors
	h := Handover{
		EmployeeID:         r.EmployeeID,
		ManagerID:          r.ManagerID,
		ReceiverEmployeeID: r.ReceiverEmployeeID,
		Note:               r.Note,
		Status:             StatusOpen,
	}

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.ReceiverEmployeeID != nil && *r.ReceiverEmployeeID == r.EmployeeID {
		errs = append(errs, validator.ValidationError{Field: "receiver_employee_id", Message: "cannot hand over to yourself"})
	}
	if r.DueDate != nil {
		if d, ok := validator.IsValidDate(*r.DueDate); ok {
			h.DueDate = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "due_date", Message: "due_date must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return Handover{}, errs
	}
	return h, nil
}

type AddItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
}

func (r AddItemRequest) Item(handoverID string) (Item, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if r.AssigneeID != nil && validator.IsEmpty(*r.AssigneeID) {
		errs = append(errs, validator.ValidationError{Field: "assignee_id", Message: "assignee_id must not be blank"})
	}
	if len(errs) > 0 {
		return Item{}, errs
	}
	return Item{HandoverID: handoverID, Title: r.Title, Description: r.Description, AssigneeID: r.AssigneeID, Status: ItemPending}, nil
}

type SetItemStatusRequest struct {
	ItemID string `json:"-"`
	Status string `json:"status"`
}

type ListHandoverRequest struct {
	EmployeeID *string
	ReceiverID *string
	Status     *string
	Limit      int
}

func (r ListHandoverRequest) Filter() (HandoverFilter, error) {
	f := HandoverFilter{EmployeeID: r.EmployeeID, ReceiverID: r.ReceiverID, Limit: r.Limit}
	if r.Status != nil {
		st, err := ParseStatus(*r.Status)
		if err != nil {
			return HandoverFilter{}, err
		}
		f.Status = &st
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return f, nil
}

type ItemResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	Status      ItemStatus `json:"status"`
	DoneAt      *time.Time `json:"done_at,omitempty"`
}

type HandoverResponse struct {
	ID                 string         `json:"id"`
	EmployeeID         string         `json:"employee_id"`
	ManagerID          *string        `json:"manager_id,omitempty"`
	ReceiverEmployeeID *string        `json:"receiver_employee_id,omitempty"`
	DueDate            *string        `json:"due_date,omitempty"`
	Note               string         `json:"note"`
	Status             Status         `json:"status"`
	Items              []ItemResponse `json:"items,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

func NewItemResponse(i Item) ItemResponse {
	return ItemResponse{ID: i.ID, Title: i.Title, Description: i.Description, AssigneeID: i.AssigneeID, Status: i.Status, DoneAt: i.DoneAt}
}

func NewHandoverResponse(h Handover) HandoverResponse {
	resp := HandoverResponse{
		ID:                 h.ID,
		EmployeeID:         h.EmployeeID,
		ManagerID:          h.ManagerID,
		ReceiverEmployeeID: h.ReceiverEmployeeID,
		Note:               h.Note,
		Status:             h.Status,
		CreatedAt:          h.CreatedAt,
	}
	if h.DueDate != nil {
		d := h.DueDate.Format("2006-01-02")
		resp.DueDate = &d
	}
	for _, i := range h.Items {
		resp.Items = append(resp.Items, NewItemResponse(i))
	}
	return resp
}

type ItemChangeResponse struct {
	Item     ItemResponse     `json:"item"`
	Handover HandoverResponse `json:"handover"`
}

func NewItemChangeResponse(c ItemChange) ItemChangeResponse {
	return ItemChangeResponse{Item: NewItemResponse(c.Item), Handover: NewHandoverResponse(c.Handover)}
}
