package period

import "time"

// ReportingPeriod groups windows whose start date lies in [StartDate, EndDate].
type ReportingPeriod struct {
	ID        string
	Name      string
	StartDate time.Time // midnight, inclusive
	EndDate   time.Time // midnight, inclusive
	CreatedBy string
	CreatedAt time.Time
}

// Bounds returns the half-open instant range [from, to) covering every day of the period in loc.
func (p ReportingPeriod) Bounds(loc *time.Location) (from, to time.Time) {
	s := p.StartDate
	e := p.EndDate
	from = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	to = time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	return from, to
}

// ContainsDate reports whether the calendar day of t (in loc) lies in the period.
func (p ReportingPeriod) ContainsDate(t time.Time, loc *time.Location) bool {
	from, to := p.Bounds(loc)
	return !t.Before(from) && t.Before(to)
}
