package attendance

import (
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreateAttendanceRequest struct {
	EmployeeID      string         `json:"employee_id"`
	Date            string         `json:"date"`
	ShiftTemplateID *string        `json:"shift_template_id,omitempty"`
	BreakMinutes    *int           `json:"break_minutes,omitempty"`
	RawPayload      map[string]any `json:"raw_payload,omitempty"`
}

// Attendance validates the request and returns the PENDING record it
// describes. Punches are recorded later, so derived minutes start at zero.
func (r CreateAttendanceRequest) Attendance() (Attendance, error) {
	var errs validator.ValidationErrors
	a := Attendance{
		EmployeeID:      r.EmployeeID,
		ShiftTemplateID: r.ShiftTemplateID,
		BreakMinutes:    r.BreakMinutes,
		Status:          StatusPending,
		IsValid:         true,
		RawPayload:      r.RawPayload,
	}

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	} else if date, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	} else {
		a.Date = date
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "break_minutes must not be negative"})
	}
	if r.ShiftTemplateID != nil && validator.IsEmpty(*r.ShiftTemplateID) {
		errs = append(errs, validator.ValidationError{Field: "shift_template_id", Message: "shift_template_id must not be blank"})
	}

	if len(errs) > 0 {
		return Attendance{}, errs
	}
	return a, nil
}

type BatchRegisterRequest struct {
	Items []CreateAttendanceRequest `json:"items"`
}

// Attendances validates every item. Errors name the offending index.
func (r BatchRegisterRequest) Attendances() ([]Attendance, error) {
	var errs validator.ValidationErrors
	out := make([]Attendance, 0, len(r.Items))
	for i, item := range r.Items {
		a, err := item.Attendance()
		if err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok {
				for _, v := range verrs {
					errs = append(errs, validator.ValidationError{
						Field:   "items[" + strconv.Itoa(i) + "]." + v.Field,
						Message: v.Message,
					})
				}
				continue
			}
			return nil, err
		}
		out = append(out, a)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

type PunchRequest struct {
	ID        string         `json:"-"`
	Direction string         `json:"direction"`
	When      *string        `json:"when,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Parse returns the direction and instant of the punch. A missing When
// defaults to now.
func (r PunchRequest) Parse(now time.Time) (Direction, time.Time, error) {
	direction, err := ParseDirection(r.Direction)
	if err != nil {
		return "", time.Time{}, err
	}
	if r.When == nil {
		return direction, now, nil
	}
	when, ok := validator.IsValidDateTime(*r.When)
	if !ok {
		return "", time.Time{}, validator.ValidationErrors{{Field: "when", Message: "when must be an RFC3339 timestamp"}}
	}
	return direction, when, nil
}

// UpdateTimesRequest is a manual correction of punches or break.
type UpdateTimesRequest struct {
	ID           string  `json:"-"`
	TsIn         *string `json:"ts_in,omitempty"`
	TsOut        *string `json:"ts_out,omitempty"`
	BreakMinutes *int    `json:"break_minutes,omitempty"`
}

// Apply validates the request and writes the provided fields onto a.
func (r UpdateTimesRequest) Apply(a *Attendance) error {
	var errs validator.ValidationErrors
	if r.TsIn == nil && r.TsOut == nil && r.BreakMinutes == nil {
		errs = append(errs, validator.ValidationError{Field: "body", Message: "at least one of ts_in, ts_out, break_minutes is required"})
	}
	var tsIn, tsOut *time.Time
	if r.TsIn != nil {
		ts, ok := validator.IsValidDateTime(*r.TsIn)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "ts_in", Message: "ts_in must be an RFC3339 timestamp"})
		}
		tsIn = &ts
	}
	if r.TsOut != nil {
		ts, ok := validator.IsValidDateTime(*r.TsOut)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "ts_out", Message: "ts_out must be an RFC3339 timestamp"})
		}
		tsOut = &ts
	}
	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "break_minutes must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}

	if tsIn != nil {
		a.TsIn = tsIn
	}
	if tsOut != nil {
		a.TsOut = tsOut
	}
	if r.BreakMinutes != nil {
		a.BreakMinutes = r.BreakMinutes
	}
	return nil
}

type ListAttendanceRequest struct {
	EmployeeID *string
	From       *string
	To         *string
	Status     *string
	Limit      int
}

func (r ListAttendanceRequest) Filter() (AttendanceFilter, error) {
	var errs validator.ValidationErrors
	f := AttendanceFilter{EmployeeID: r.EmployeeID, Limit: r.Limit}

	if r.From != nil {
		if d, ok := validator.IsValidDate(*r.From); ok {
			f.From = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
	}
	if r.To != nil {
		if d, ok := validator.IsValidDate(*r.To); ok {
			f.To = &d
		} else {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
	}
	if r.Status != nil {
		if st, err := ParseStatus(*r.Status); err == nil {
			f.Status = &st
		} else {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: PENDING, APPROVED, CANCELED"})
		}
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 500 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 500"})
	}

	if len(errs) > 0 {
		return AttendanceFilter{}, errs
	}
	return f, nil
}

type AttendanceResponse struct {
	ID              string         `json:"id"`
	EmployeeID      string         `json:"employee_id"`
	Date            string         `json:"date"`
	ShiftTemplateID *string        `json:"shift_template_id,omitempty"`
	TsIn            *time.Time     `json:"ts_in,omitempty"`
	TsOut           *time.Time     `json:"ts_out,omitempty"`
	BreakMinutes    *int           `json:"break_minutes,omitempty"`
	WorkMinutes     int            `json:"work_minutes"`
	LateMinutes     int            `json:"late_minutes"`
	EarlyMinutes    int            `json:"early_minutes"`
	OvertimeMinutes int            `json:"overtime_minutes"`
	Status          Status         `json:"status"`
	IsValid         bool           `json:"is_valid"`
	ApprovedBy      *string        `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	OnLeave         *string        `json:"on_leave,omitempty"`
	RawPayload      map[string]any `json:"raw_payload,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:              a.ID,
		EmployeeID:      a.EmployeeID,
		Date:            a.Date.Format(dateLayout),
		ShiftTemplateID: a.ShiftTemplateID,
		TsIn:            a.TsIn,
		TsOut:           a.TsOut,
		BreakMinutes:    a.BreakMinutes,
		WorkMinutes:     a.WorkMinutes,
		LateMinutes:     a.LateMinutes,
		EarlyMinutes:    a.EarlyMinutes,
		OvertimeMinutes: a.OvertimeMinutes,
		Status:          a.Status,
		IsValid:         a.IsValid,
		ApprovedBy:      a.ApprovedBy,
		ApprovedAt:      a.ApprovedAt,
		OnLeave:         a.OnLeave,
		RawPayload:      a.RawPayload,
		UpdatedAt:       a.UpdatedAt,
	}
}
