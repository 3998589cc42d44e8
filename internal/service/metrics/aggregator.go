package metrics

import (
	"log/slog"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	attendanceService "github.com/meetinghours/attendance-backend/internal/service/attendance"
)

// Aggregator folds a period's windows, a user's records and their exclusion
// into UserMetrics. It does no I/O.
type Aggregator struct {
	calculator *attendanceService.CreditCalculator
}

func NewAggregator(calculator *attendanceService.CreditCalculator) *Aggregator {
	return &Aggregator{calculator: calculator}
}

// Aggregate expects windows to be the period's windows and records to belong
// to userID. Records for windows not in windows are ignored.
func (a *Aggregator) Aggregate(userID, periodID string, windows []window.TimeWindow, records []attendance.Record, exclusion Exclusion) metrics.UserMetrics {
	recordByWindow := make(map[string]attendance.Record, len(records))
	for _, r := range records {
		recordByWindow[r.WindowID] = r
	}

	m := metrics.UserMetrics{UserID: userID, PeriodID: periodID}
	seen := make(map[string]struct{}, len(windows))
	for _, w := range windows {
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}

		credited := a.credit(w, recordByWindow)
		switch w.Category {
		case window.CategoryRegular:
			m.RegularTotal += w.Duration()
			m.RegularWindowCount++
			m.RegularAttended += credited
			if credited > 0 {
				m.RegularAttendedCount++
			}
		case window.CategoryOutreach:
			m.OutreachTotal += w.Duration()
			m.OutreachWindowCount++
			m.OutreachAttended += credited
		}
	}

	m.RegularExcused = exclusion.Duration
	m.RegularExcusedCount = exclusion.Count()
	m.RegularPercentage = percentage(m)
	return m
}

func (a *Aggregator) credit(w window.TimeWindow, records map[string]attendance.Record) time.Duration {
	r, ok := records[w.ID]
	if !ok {
		return 0
	}
	c, err := a.calculator.Credit(w, r.Credit())
	if err != nil {
		slog.Warn("attendance record earns no credit", "record_id", r.ID, "window_id", w.ID, "error", err)
		return 0
	}
	return c
}

// percentage is attended / (total - excused) * 100. Attendance at an excused
// window still counts in the numerator, so the value can exceed 100.
func percentage(m metrics.UserMetrics) metrics.Percentage {
	if m.RegularWindowCount == 0 {
		return metrics.NoWindows()
	}
	denominator := m.Denominator()
	if denominator <= 0 {
		return metrics.NotApplicable()
	}
	return metrics.Measured(float64(m.RegularAttended) / float64(denominator) * 100)
}
