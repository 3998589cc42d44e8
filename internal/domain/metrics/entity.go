package metrics

import (
	"encoding/json"
	"time"
)

type PercentageStatus string

const (
	// PercentageMeasured carries attended / (total - excused) * 100.
	PercentageMeasured PercentageStatus = "measured"
	// PercentageNoWindows means the period has no regular windows; reported as 100.
	PercentageNoWindows PercentageStatus = "no_windows"
	// PercentageNotApplicable means every regular window was excused; there is no value.
	PercentageNotApplicable PercentageStatus = "not_applicable"
)

// Percentage is a regular-attendance percentage that may have no denominator.
type Percentage struct {
	Status PercentageStatus
	Value  float64
}

func Measured(value float64) Percentage {
	return Percentage{Status: PercentageMeasured, Value: value}
}

func NoWindows() Percentage {
	return Percentage{Status: PercentageNoWindows, Value: 100}
}

func NotApplicable() Percentage {
	return Percentage{Status: PercentageNotApplicable}
}

// Get returns the value and whether there is one.
func (p Percentage) Get() (float64, bool) {
	if p.Status == PercentageNotApplicable {
		return 0, false
	}
	return p.Value, true
}

func (p Percentage) IsApplicable() bool {
	return p.Status != PercentageNotApplicable
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	out := struct {
		Status PercentageStatus `json:"status"`
		Value  *float64         `json:"value"`
	}{Status: p.Status}
	if v, ok := p.Get(); ok {
		out.Value = &v
	}
	return json.Marshal(out)
}

// UserMetrics are the raw compliance figures of one user for one period.
type UserMetrics struct {
	UserID   string
	PeriodID string

	RegularPercentage    Percentage
	RegularAttended      time.Duration
	RegularTotal         time.Duration
	RegularExcused       time.Duration
	RegularWindowCount   int
	RegularAttendedCount int
	RegularExcusedCount  int

	OutreachAttended    time.Duration
	OutreachTotal       time.Duration
	OutreachWindowCount int
}

// Denominator is the regular duration the percentage is measured against.
func (m UserMetrics) Denominator() time.Duration {
	return m.RegularTotal - m.RegularExcused
}
