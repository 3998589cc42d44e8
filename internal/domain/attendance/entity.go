package attendance

import (
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

// Record is the single attendance entry a user holds for a window.
type Record struct {
	ID              string
	UserID          string
	WindowID        string
	AttendanceStart *time.Time
	AttendanceEnd   *time.Time
	PartialHours    *float64
	ExplicitTime    bool
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO / Join
	Window *window.TimeWindow
}

// Credit reconstructs the credit variant stored in the record's fields.
func (r Record) Credit() Credit {
	if r.ExplicitTime && r.AttendanceStart != nil && r.AttendanceEnd != nil {
		return TimedRange{Range: TimeRange{Start: *r.AttendanceStart, End: *r.AttendanceEnd}}
	}
	if r.PartialHours != nil {
		return LegacyPartial{Hours: *r.PartialHours}
	}
	return LegacyFull{}
}

// ApplyCredit overwrites the record's time fields with c. Fields not used by
// the variant are cleared so an edit never leaves stale values behind.
func (r *Record) ApplyCredit(c Credit) {
	r.AttendanceStart = nil
	r.AttendanceEnd = nil
	r.PartialHours = nil
	r.ExplicitTime = false

	switch v := c.(type) {
	case TimedRange:
		start, end := v.Range.Start, v.Range.End
		r.AttendanceStart = &start
		r.AttendanceEnd = &end
		r.ExplicitTime = true
	case LegacyPartial:
		hours := v.Hours
		r.PartialHours = &hours
	}
}

// TimeRange is a submitted [Start, End) attendance interval.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func (t TimeRange) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

func (t TimeRange) IsValid() bool {
	return t.Start.Before(t.End)
}

type CreditKind string

const (
	CreditKindLegacyFull    CreditKind = "legacy_full"
	CreditKindLegacyPartial CreditKind = "legacy_partial"
	CreditKindTimedRange    CreditKind = "timed_range"
)

// Credit is one of LegacyFull, LegacyPartial or TimedRange.
type Credit interface {
	Kind() CreditKind
}

// LegacyFull credits the whole window.
type LegacyFull struct{}

// LegacyPartial credits an explicit number of hours.
type LegacyPartial struct {
	Hours float64
}

// TimedRange credits the overlap of Range with the window.
type TimedRange struct {
	Range TimeRange
}

func (LegacyFull) Kind() CreditKind    { return CreditKindLegacyFull }
func (LegacyPartial) Kind() CreditKind { return CreditKindLegacyPartial }
func (TimedRange) Kind() CreditKind    { return CreditKindTimedRange }

type TargetKind string

const (
	TargetKindByID    TargetKind = "by_id"
	TargetKindByDate  TargetKind = "by_date"
	TargetKindByRange TargetKind = "by_range"
)

// Target identifies the window a submission is for: ByID, ByDate or ByRange.
type Target interface {
	Kind() TargetKind
}

// ByID targets a window directly. An empty Category matches any category.
type ByID struct {
	WindowID string
	Category window.Category
}

// ByDate targets the only window of Category starting on Date.
type ByDate struct {
	Date     time.Time
	Category window.Category
}

// ByRange targets the window of Category on Date overlapping Range the most.
type ByRange struct {
	Date     time.Time
	Category window.Category
	Range    TimeRange
}

func (ByID) Kind() TargetKind    { return TargetKindByID }
func (ByDate) Kind() TargetKind  { return TargetKindByDate }
func (ByRange) Kind() TargetKind { return TargetKindByRange }

// Submission is a normalized attendance submission.
type Submission struct {
	UserID string
	Target Target
	Credit Credit
	Notes  string
}
