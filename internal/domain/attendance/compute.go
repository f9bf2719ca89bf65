package attendance

import (
	"math"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/shift"
)

// ComputeMinutes derives the minute summary of a record against its shift.
// Missing punches, a missing shift or inverted times yield zeros; the result
// is never negative.
func ComputeMinutes(a Attendance, plan *shift.Template, loc *time.Location) Summary {
	var s Summary
	if plan == nil {
		return s
	}
	if loc == nil {
		loc = time.UTC
	}

	startPlan, endPlan := plan.Window(a.Date, loc)

	if a.TsIn != nil {
		switch {
		case a.TsIn.After(startPlan):
			s.LateMinutes = roundMinutes(a.TsIn.Sub(startPlan))
		case a.TsIn.Before(startPlan):
			// early arrival counts as overtime, lateness stays 0
			s.OvertimeMinutes += roundMinutes(startPlan.Sub(*a.TsIn))
		}
	}

	if a.TsOut != nil {
		switch {
		case a.TsOut.Before(endPlan):
			s.EarlyMinutes = roundMinutes(endPlan.Sub(*a.TsOut))
		case a.TsOut.After(endPlan):
			s.OvertimeMinutes += roundMinutes(a.TsOut.Sub(endPlan))
		}
	}

	if a.TsIn != nil && a.TsOut != nil && a.TsOut.After(*a.TsIn) {
		span := roundMinutes(a.TsOut.Sub(*a.TsIn))
		breakMinutes := plan.BreakMinutes
		if a.BreakMinutes != nil {
			breakMinutes = *a.BreakMinutes
		}
		if breakMinutes > 0 && span > breakMinutes {
			span -= breakMinutes
		}
		s.WorkMinutes = max(0, span)
	}

	return s
}

func roundMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(float64(d.Milliseconds()) / 60000))
}
