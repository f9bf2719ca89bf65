package attendance

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusCanceled Status = "CANCELED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusCanceled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Direction is the side of a punch.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionIn, DirectionOut:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

type Attendance struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	ShiftTemplateID *string
	TsIn            *time.Time
	TsOut           *time.Time
	// BreakMinutes overrides the shift's break when set. An explicit 0 means no break.
	BreakMinutes    *int
	WorkMinutes     int
	LateMinutes     int
	EarlyMinutes    int
	OvertimeMinutes int
	Status          Status
	IsValid         bool
	ApprovedBy      *string
	ApprovedAt      *time.Time
	OnLeave         *string
	// CanceledByLeave is set when a leave link moved the row to CANCELED.
	CanceledByLeave bool
	RawPayload      map[string]any
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Summary is the derived minute breakdown of one record.
type Summary struct {
	WorkMinutes     int
	LateMinutes     int
	EarlyMinutes    int
	OvertimeMinutes int
}

func (a *Attendance) ApplySummary(s Summary) {
	a.WorkMinutes = s.WorkMinutes
	a.LateMinutes = s.LateMinutes
	a.EarlyMinutes = s.EarlyMinutes
	a.OvertimeMinutes = s.OvertimeMinutes
}

func (a Attendance) Summary() Summary {
	return Summary{
		WorkMinutes:     a.WorkMinutes,
		LateMinutes:     a.LateMinutes,
		EarlyMinutes:    a.EarlyMinutes,
		OvertimeMinutes: a.OvertimeMinutes,
	}
}

// Punch records when on the given side.
func (a *Attendance) Punch(direction Direction, when time.Time) {
	switch direction {
	case DirectionIn:
		a.TsIn = &when
	case DirectionOut:
		a.TsOut = &when
	}
}

// MergePayload copies payload keys over RawPayload. Existing keys not in
// payload are kept.
func (a *Attendance) MergePayload(payload map[string]any) {
	if len(payload) == 0 {
		return
	}
	if a.RawPayload == nil {
		a.RawPayload = make(map[string]any, len(payload))
	}
	for k, v := range payload {
		a.RawPayload[k] = v
	}
}

func (a *Attendance) Approve(approverID string, at time.Time) {
	a.Status = StatusApproved
	a.IsValid = true
	a.ApprovedBy = &approverID
	a.ApprovedAt = &at
	a.CanceledByLeave = false
}

func (a *Attendance) MarkPending() {
	a.Status = StatusPending
	a.IsValid = true
	a.ApprovedBy = nil
	a.ApprovedAt = nil
	a.CanceledByLeave = false
}

func (a *Attendance) Cancel() {
	a.Status = StatusCanceled
	a.IsValid = false
	a.ApprovedBy = nil
	a.ApprovedAt = nil
	a.CanceledByLeave = false
}

// LinkLeave marks the day as covered by leaveID. A PENDING or APPROVED row
// is canceled and remembered as canceled by the leave; a CANCELED row keeps
// its status.
func (a *Attendance) LinkLeave(leaveID string) {
	a.OnLeave = &leaveID
	if a.Status == StatusPending || a.Status == StatusApproved {
		a.Cancel()
		a.CanceledByLeave = true
	}
}

// UnlinkLeave clears the leave reference. With restorePending only a row the
// link itself canceled returns to PENDING.
func (a *Attendance) UnlinkLeave(restorePending bool) {
	a.OnLeave = nil
	if restorePending && a.CanceledByLeave && a.Status == StatusCanceled {
		a.MarkPending()
	}
	a.CanceledByLeave = false
}

type AttendanceFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Status     *Status
	Limit      int
}
