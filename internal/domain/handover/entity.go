package handover

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusOpen, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

type ItemStatus string

const (
	ItemPending ItemStatus = "PENDING"
	ItemDone    ItemStatus = "DONE"
)

func ParseItemStatus(s string) (ItemStatus, error) {
	switch st := ItemStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case ItemPending, ItemDone:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidItemStatus, s)
}

// Handover is a hand-over of duties from EmployeeID to ReceiverEmployeeID.
// Status is derived from the items once the first item exists.
type Handover struct {
	ID                 string
	EmployeeID         string
	ManagerID          *string
	ReceiverEmployeeID *string
	DueDate            *time.Time
	Note               string
	Status             Status
	Items              []Item
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Item struct {
	ID          string
	HandoverID  string
	Title       string
	Description string
	// AssigneeID is the employee expected to take the item over, when known.
	AssigneeID  *string
	Status      ItemStatus
	DoneAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetStatus moves the item to status. DoneAt is stamped only when the item
// becomes DONE and cleared otherwise.
func (i *Item) SetStatus(status ItemStatus, at time.Time) {
	if status == ItemDone {
		if i.Status != ItemDone || i.DoneAt == nil {
			i.DoneAt = &at
		}
	} else {
		i.DoneAt = nil
	}
	i.Status = status
}

// Aggregate returns the parent status for total items of which done are DONE.
// A handover with no items is never DONE. A DONE parent that has open items
// again stays DONE unless revertOnReopen is set.
func Aggregate(current Status, total, done int, revertOnReopen bool) Status {
	switch {
	case total > 0 && done >= total:
		return StatusDone
	case current == StatusOpen && total > 0:
		return StatusInProgress
	case current == StatusDone && revertOnReopen:
		return StatusInProgress
	}
	return current
}

type HandoverFilter struct {
	EmployeeID *string
	ReceiverID *string
	Status     *Status
	Limit      int
}

// ItemChange is the result of an item mutation: the item and its parent
// after the aggregate was recomputed.
type ItemChange struct {
	Item     Item
	Handover Handover
}
