package leave

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusSubmitted, StatusApproved, StatusRejected, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// transitions lists the decisions allowed from each status. CANCELLED is terminal.
var transitions = map[Status][]Status{
	StatusSubmitted: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCancelled},
	StatusRejected:  {StatusCancelled},
}

// CanTransitionTo reports whether a request in s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type LeaveType string

const (
	TypeAnnual      LeaveType = "ANNUAL"
	TypeUnpaid      LeaveType = "UNPAID"
	TypeSick        LeaveType = "SICK"
	TypePaidSpecial LeaveType = "PAID_SPECIAL"
	TypeOvertime    LeaveType = "OVERTIME"
	TypeOnline      LeaveType = "ONLINE"
	TypeShiftChange LeaveType = "SHIFT_CHANGE"
	TypeLateIn      LeaveType = "LATE_IN"
	TypeEarlyOut    LeaveType = "EARLY_OUT"
)

var leaveTypes = []LeaveType{
	TypeAnnual, TypeUnpaid, TypeSick, TypePaidSpecial, TypeOvertime,
	TypeOnline, TypeShiftChange, TypeLateIn, TypeEarlyOut,
}

func ParseLeaveType(s string) (LeaveType, bool) {
	lt := LeaveType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range leaveTypes {
		if lt == known {
			return lt, true
		}
	}
	return "", false
}

// LeaveRequest covers the inclusive date range [StartDate, EndDate].
type LeaveRequest struct {
	ID                   string
	EmployeeID           string
	StartDate            time.Time
	EndDate              time.Time
	LeaveType            LeaveType
	Hours                *float64
	Paid                 bool
	Reason               string
	Status               Status
	DecidedBy            *string
	DecisionTs           *time.Time
	HandoverToEmployeeID *string
	HandoverContent      *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Decide moves the request to next and stamps the decision. Repeating the
// current status is accepted and reports changed=false without re-stamping.
func (l *LeaveRequest) Decide(next Status, actorID string, at time.Time) (changed bool, err error) {
	if l.Status == next {
		return false, nil
	}
	if !l.Status.CanTransitionTo(next) {
		return false, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, l.Status, next)
	}
	l.Status = next
	l.DecidedBy = &actorID
	l.DecisionTs = &at
	return true, nil
}

type LeaveFilter struct {
	EmployeeID  *string
	Statuses    []Status
	LeaveType   *LeaveType
	HandoverTo  *string
	DecidedBy   *string
	StartFrom   *time.Time
	EndTo       *time.Time
	OrderByDate bool
	Limit       int
}

// UnlinkPolicy decides what happens to canceled attendance when its leave
// is cancelled or deleted.
type UnlinkPolicy string

const (
	UnlinkKeepStatus     UnlinkPolicy = "keep"
	UnlinkRestorePending UnlinkPolicy = "restore_pending"
)
