package shift

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

const maxPayFactor = 5.0

type CreateShiftRequest struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	BreakMinutes *int     `json:"break_minutes,omitempty"`
	Overnight    bool     `json:"overnight"`
	PayFactor    *float64 `json:"pay_factor,omitempty"`
}

// Template validates the request and builds the template it describes.
func (r CreateShiftRequest) Template() (Template, error) {
	var errs validator.ValidationErrors
	t := Template{Code: r.Code, Name: r.Name, Overnight: r.Overnight, PayFactor: 1}

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code is required"})
	} else if len(r.Code) > 16 {
		errs = append(errs, validator.ValidationError{Field: "code", Message: "code must be at most 16 characters"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}

	var err error
	if t.StartTime, err = ParseTimeOfDay(r.StartTime); err != nil {
		errs = append(errs, validator.ValidationError{Field: "start_time", Message: "start_time must be HH:MM or HH:MM:SS"})
	}
	if t.EndTime, err = ParseTimeOfDay(r.EndTime); err != nil {
		errs = append(errs, validator.ValidationError{Field: "end_time", Message: "end_time must be HH:MM or HH:MM:SS"})
	}
	if r.BreakMinutes != nil {
		if *r.BreakMinutes < 0 {
			errs = append(errs, validator.ValidationError{Field: "break_minutes", Message: "break_minutes must not be negative"})
		}
		t.BreakMinutes = *r.BreakMinutes
	}
	if r.PayFactor != nil {
		if *r.PayFactor < 0 || *r.PayFactor > maxPayFactor {
			errs = append(errs, validator.ValidationError{Field: "pay_factor", Message: "pay_factor must be between 0 and 5"})
		}
		t.PayFactor = *r.PayFactor
	}

	if len(errs) > 0 {
		return Template{}, errs
	}
	return t, nil
}

// UpdateShiftRequest carries the fields to change. Nil fields keep the
// current version's value.
type UpdateShiftRequest struct {
	ID           string   `json:"-"`
	Code         *string  `json:"code,omitempty"`
	Name         *string  `json:"name,omitempty"`
	StartTime    *string  `json:"start_time,omitempty"`
	EndTime      *string  `json:"end_time,omitempty"`
	BreakMinutes *int     `json:"break_minutes,omitempty"`
	Overnight    *bool    `json:"overnight,omitempty"`
	PayFactor    *float64 `json:"pay_factor,omitempty"`
}

// Apply merges the request into current and validates the result.
func (r UpdateShiftRequest) Apply(current Template) (Template, error) {
	merged := CreateShiftRequest{
		Code:         current.Code,
		Name:         current.Name,
		StartTime:    current.StartTime.String(),
		EndTime:      current.EndTime.String(),
		BreakMinutes: &current.BreakMinutes,
		Overnight:    current.Overnight,
		PayFactor:    &current.PayFactor,
	}
	if r.Code != nil {
		merged.Code = *r.Code
	}
	if r.Name != nil {
		merged.Name = *r.Name
	}
	if r.StartTime != nil {
		merged.StartTime = *r.StartTime
	}
	if r.EndTime != nil {
		merged.EndTime = *r.EndTime
	}
	if r.BreakMinutes != nil {
		merged.BreakMinutes = r.BreakMinutes
	}
	if r.Overnight != nil {
		merged.Overnight = *r.Overnight
	}
	if r.PayFactor != nil {
		merged.PayFactor = r.PayFactor
	}
	return merged.Template()
}

type ShiftResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	StartTime    TimeOfDay  `json:"start_time"`
	EndTime      TimeOfDay  `json:"end_time"`
	BreakMinutes int        `json:"break_minutes"`
	Overnight    bool       `json:"overnight"`
	PayFactor    float64    `json:"pay_factor"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func NewShiftResponse(t Template) ShiftResponse {
	return ShiftResponse{
		ID:           t.ID,
		Code:         t.Code,
		Name:         t.Name,
		StartTime:    t.StartTime,
		EndTime:      t.EndTime,
		BreakMinutes: t.BreakMinutes,
		Overnight:    t.Overnight,
		PayFactor:    t.PayFactor,
		CreatedAt:    t.CreatedAt,
		DeletedAt:    t.DeletedAt,
	}
}
