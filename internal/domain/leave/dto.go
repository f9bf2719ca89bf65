package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreateLeaveRequest struct {
	EmployeeID           string   `json:"employee_id"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	LeaveType            string   `json:"leave_type"`
	Hours                *float64 `json:"hours,omitempty"`
	Paid                 bool     `json:"paid"`
	Reason               string   `json:"reason"`
	HandoverToEmployeeID *string  `json:"handover_to_employee_id,omitempty"`
	HandoverContent      *string  `json:"handover_content,omitempty"`
}

// LeaveRequest validates the request and returns the SUBMITTED entity.
func (r CreateLeaveRequest) LeaveRequest() (LeaveRequest, error) {
	var errs validator.ValidationErrors
	l := LeaveRequest{
		EmployeeID:           r.EmployeeID,
		Hours:                r.Hours,
		Paid:                 r.Paid,
		Reason:               r.Reason,
		Status:               StatusSubmitted,
		HandoverToEmployeeID: r.HandoverToEmployeeID,
		HandoverContent:      r.HandoverContent,
	}

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	l.StartDate, l.EndDate = start, end

	if lt, ok := ParseLeaveType(r.LeaveType); ok {
		l.LeaveType = lt
	} else {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is not a known leave type"})
	}
	if r.Hours != nil && *r.Hours < 0 {
		errs = append(errs, validator.ValidationError{Field: "hours", Message: "hours must not be negative"})
	}
	if r.HandoverToEmployeeID != nil && *r.HandoverToEmployeeID == r.EmployeeID {
		errs = append(errs, validator.ValidationError{Field: "handover_to_employee_id", Message: "cannot hand over to yourself"})
	}

	if len(errs) > 0 {
		return LeaveRequest{}, errs
	}
	return l, nil
}

type ListPendingRequest struct {
	From *string
	To   *string
}

func (r ListPendingRequest) Filter() (LeaveFilter, error) {
	f := LeaveFilter{Statuses: []Status{StatusSubmitted}, OrderByDate: true}
	var errs validator.ValidationErrors
	f.StartFrom = parseOptionalDate(r.From, "from", &errs)
	f.EndTo = parseOptionalDate(r.To, "to", &errs)
	if len(errs) > 0 {
		return LeaveFilter{}, errs
	}
	return f, nil
}

type FilterLeaveRequest struct {
	EmployeeID *string
	Status     *string
	LeaveType  *string
	HandoverTo *string
	DecidedBy  *string
	StartFrom  *string
	EndTo      *string
	Limit      int
}

func (r FilterLeaveRequest) Filter() (LeaveFilter, error) {
	var errs validator.ValidationErrors
	f := LeaveFilter{
		EmployeeID: r.EmployeeID,
		HandoverTo: r.HandoverTo,
		DecidedBy:  r.DecidedBy,
		Limit:      r.Limit,
	}
	if r.Status != nil {
		if st, err := ParseStatus(*r.Status); err == nil {
			f.Statuses = []Status{st}
		} else {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: SUBMITTED, APPROVED, REJECTED, CANCELLED"})
		}
	}
	if r.LeaveType != nil {
		if lt, ok := ParseLeaveType(*r.LeaveType); ok {
			f.LeaveType = &lt
		} else {
			errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is not a known leave type"})
		}
	}
	f.StartFrom = parseOptionalDate(r.StartFrom, "start_from", &errs)
	f.EndTo = parseOptionalDate(r.EndTo, "end_to", &errs)
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 500"})
	}
	if len(errs) > 0 {
		return LeaveFilter{}, errs
	}
	return f, nil
}

func parseOptionalDate(value *string, field string, errs *validator.ValidationErrors) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	d, ok := validator.IsValidDate(*value)
	if !ok {
		*errs = append(*errs, validator.ValidationError{Field: field, Message: field + " must be in YYYY-MM-DD format"})
		return nil
	}
	return &d
}

type DecisionRequest struct {
	LinkAttendance *bool `json:"link_attendance,omitempty"`
}

type LeaveRequestResponse struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employee_id"`
	StartDate            string     `json:"start_date"`
	EndDate              string     `json:"end_date"`
	LeaveType            LeaveType  `json:"leave_type"`
	Hours                *float64   `json:"hours,omitempty"`
	Paid                 bool       `json:"paid"`
	Reason               string     `json:"reason"`
	Status               Status     `json:"status"`
	DecidedBy            *string    `json:"decided_by,omitempty"`
	DecisionTs           *time.Time `json:"decision_ts,omitempty"`
	HandoverToEmployeeID *string    `json:"handover_to_employee_id,omitempty"`
	HandoverContent      *string    `json:"handover_content,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func NewLeaveRequestResponse(l LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:                   l.ID,
		EmployeeID:           l.EmployeeID,
		StartDate:            l.StartDate.Format(dateLayout),
		EndDate:              l.EndDate.Format(dateLayout),
		LeaveType:            l.LeaveType,
		Hours:                l.Hours,
		Paid:                 l.Paid,
		Reason:               l.Reason,
		Status:               l.Status,
		DecidedBy:            l.DecidedBy,
		DecisionTs:           l.DecisionTs,
		HandoverToEmployeeID: l.HandoverToEmployeeID,
		HandoverContent:      l.HandoverContent,
		CreatedAt:            l.CreatedAt,
	}
}
