package attendance

import (
	"fmt"
	"math"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

// CreditCalculator derives the duration a submission earns toward requirements.
type CreditCalculator struct {
}

func NewCreditCalculator() *CreditCalculator {
	return &CreditCalculator{}
}

// Credit never returns more than the window's own duration.
func (c *CreditCalculator) Credit(w window.TimeWindow, credit attendance.Credit) (time.Duration, error) {
	switch v := credit.(type) {
	case attendance.LegacyFull:
		return w.Duration(), nil
	case attendance.LegacyPartial:
		return c.creditPartial(w, v.Hours)
	case attendance.TimedRange:
		return c.creditRange(w, v.Range)
	default:
		return 0, fmt.Errorf("unsupported credit %T", credit)
	}
}

func (c *CreditCalculator) creditPartial(w window.TimeWindow, hours float64) (time.Duration, error) {
	if hours <= 0 || math.IsNaN(hours) {
		return 0, attendance.ErrInvalidPartialHours
	}
	if hours >= w.Hours() {
		return w.Duration(), nil
	}
	return time.Duration(hours * float64(time.Hour)), nil
}

func (c *CreditCalculator) creditRange(w window.TimeWindow, r attendance.TimeRange) (time.Duration, error) {
	if !r.IsValid() {
		return 0, attendance.ErrInvalidRange
	}

	overlap := w.Overlap(r.Start, r.End)
	if overlap <= 0 {
		return 0, attendance.ErrNoOverlap
	}
	return min(overlap, w.Duration()), nil
}
