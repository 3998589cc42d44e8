package window

import (
	"time"
)

type Category string

const (
	CategoryRegular  Category = "regular"  // Regular team meeting
	CategoryOutreach Category = "outreach" // Outreach event, counted in hours
)

// IsValid reports whether c is a known window category.
func (c Category) IsValid() bool {
	return c == CategoryRegular || c == CategoryOutreach
}

// TimeWindow is a scheduled, immutable time interval [StartTime, EndTime).
type TimeWindow struct {
	ID          string
	StartTime   time.Time
	EndTime     time.Time
	Category    Category
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

func (w TimeWindow) Duration() time.Duration {
	return w.EndTime.Sub(w.StartTime)
}

func (w TimeWindow) Hours() float64 {
	return w.Duration().Hours()
}

// StartDate returns the calendar day the window starts on, as midnight in loc.
func (w TimeWindow) StartDate(loc *time.Location) time.Time {
	return DayStart(w.StartTime, loc)
}

// Overlap returns the length of the intersection of the window with [start, end).
// It is zero when the ranges are disjoint or merely touch.
func (w TimeWindow) Overlap(start, end time.Time) time.Duration {
	lo := w.StartTime
	if start.After(lo) {
		lo = start
	}
	hi := w.EndTime
	if end.Before(hi) {
		hi = end
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo)
}

// DayStart truncates t to midnight of its calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
