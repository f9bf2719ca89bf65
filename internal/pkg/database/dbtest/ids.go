package dbtest

import "fmt"

const (
	kindAttendance uint32 = iota + 1
	kindLeave
	kindShift
	kindHandover
	kindHandoverItem
	kindProposal
)

// newID returns a canonical UUID that sorts in insertion order. kind keeps
// the tables apart.
func newID(kind uint32, seq int) string {
	return fmt.Sprintf("%08x-0000-4000-8000-%012d", kind, seq)
}
