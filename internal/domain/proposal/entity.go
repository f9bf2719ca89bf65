package proposal

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeResign         Type = "RESIGN"
	TypeSalaryIncrease Type = "SALARY_INCREASE"
	TypeContribution   Type = "CONTRIBUTION"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeResign, TypeSalaryIncrease, TypeContribution:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

type Status string

const (
	StatusNew      Status = "NEW"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusNew, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type Proposal struct {
	ID           string
	EmployeeID   string
	ManagerID    *string
	Type         Type
	Title        string
	Content      string
	Status       Status
	DecisionNote *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Decide sets the proposal status. Only NEW proposals can be decided; the
// same decision repeated is accepted with changed=false. A non-nil note
// replaces the decision note.
func (p *Proposal) Decide(next Status, note *string) (changed bool, err error) {
	if next == StatusNew {
		if p.Status != StatusNew {
			return false, fmt.Errorf("%w: %s to %s", ErrAlreadyDecided, p.Status, next)
		}
		return false, nil
	}
	if p.Status != StatusNew && p.Status != next {
		return false, fmt.Errorf("%w: %s to %s", ErrAlreadyDecided, p.Status, next)
	}

	changed = p.Status != next
	p.Status = next
	if note != nil {
		p.DecisionNote = note
		changed = true
	}
	return changed, nil
}

type ProposalFilter struct {
	EmployeeID *string
	ManagerID  *string
	Status     *Status
	Limit      int
}
