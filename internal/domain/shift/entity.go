package shift

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

// TimeOfDayFromMicroseconds converts a PostgreSQL time value.
func TimeOfDayFromMicroseconds(us int64) TimeOfDay {
	secs := int(us / 1_000_000)
	return TimeOfDay{Hour: secs / 3600, Minute: secs % 3600 / 60, Second: secs % 60}
}

func (t TimeOfDay) Microseconds() int64 {
	return int64((t.Hour*60+t.Minute)*60+t.Second) * 1_000_000
}

// On places t on the calendar day of date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Template is a planned shift. Updates create a new version and soft-delete
// the old one, so attendance rows keep pointing at the version they used.
type Template struct {
	ID           string
	Code         string
	Name         string
	StartTime    TimeOfDay
	EndTime      TimeOfDay
	BreakMinutes int
	Overnight    bool
	PayFactor    float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Window returns the planned start and end instants for a shift worked on date.
func (t Template) Window(date time.Time, loc *time.Location) (start, end time.Time) {
	start = t.StartTime.On(date, loc)
	end = t.EndTime.On(date, loc)
	if t.Overnight {
		end = end.AddDate(0, 0, 1)
	}
	return start, end
}

// ShiftFilter narrows List results.
type ShiftFilter struct {
	Query     string
	Overnight *bool
}
