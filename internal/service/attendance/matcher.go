package attendance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

// WindowMatcher resolves a submission target to exactly one window.
type WindowMatcher struct {
	windows window.WindowRepository
	loc     *time.Location
}

func NewWindowMatcher(windows window.WindowRepository, loc *time.Location) *WindowMatcher {
	return &WindowMatcher{windows: windows, loc: loc}
}

// Match returns the window a target refers to, or one of
// attendance.ErrNoMatchingWindow, attendance.ErrAmbiguousWindow (as
// *attendance.AmbiguousMatchError) and attendance.ErrInvalidRange.
func (m *WindowMatcher) Match(ctx context.Context, target attendance.Target) (window.TimeWindow, error) {
	switch t := target.(type) {
	case attendance.ByID:
		return m.matchByID(ctx, t)
	case attendance.ByDate:
		return m.matchByDate(ctx, t)
	case attendance.ByRange:
		return m.matchByRange(ctx, t)
	default:
		return window.TimeWindow{}, fmt.Errorf("unsupported match target %T", target)
	}
}

func (m *WindowMatcher) matchByID(ctx context.Context, t attendance.ByID) (window.TimeWindow, error) {
	w, err := m.windows.GetByID(ctx, t.WindowID)
	if err != nil {
		if errors.Is(err, window.ErrWindowNotFound) {
			return window.TimeWindow{}, attendance.ErrNoMatchingWindow
		}
		return window.TimeWindow{}, fmt.Errorf("failed to get window by ID: %w", err)
	}

	if t.Category != "" && w.Category != t.Category {
		return window.TimeWindow{}, attendance.ErrNoMatchingWindow
	}

	return w, nil
}

func (m *WindowMatcher) matchByDate(ctx context.Context, t attendance.ByDate) (window.TimeWindow, error) {
	candidates, err := m.windowsOn(ctx, t.Date, t.Category)
	if err != nil {
		return window.TimeWindow{}, err
	}

	switch len(candidates) {
	case 0:
		return window.TimeWindow{}, attendance.ErrNoMatchingWindow
	case 1:
		return candidates[0], nil
	default:
		// Date alone cannot tell the windows apart.
		return window.TimeWindow{}, &attendance.AmbiguousMatchError{Candidates: candidates}
	}
}

func (m *WindowMatcher) matchByRange(ctx context.Context, t attendance.ByRange) (window.TimeWindow, error) {
	if !t.Range.IsValid() {
		return window.TimeWindow{}, attendance.ErrInvalidRange
	}

	candidates, err := m.windowsOn(ctx, t.Date, t.Category)
	if err != nil {
		return window.TimeWindow{}, err
	}

	var best []window.TimeWindow
	var bestOverlap time.Duration
	for _, c := range candidates {
		overlap := c.Overlap(t.Range.Start, t.Range.End)
		if overlap <= 0 {
			continue
		}
		switch {
		case overlap > bestOverlap:
			best = []window.TimeWindow{c}
			bestOverlap = overlap
		case overlap == bestOverlap:
			best = append(best, c)
		}
	}

	switch len(best) {
	case 0:
		return window.TimeWindow{}, attendance.ErrNoMatchingWindow
	case 1:
		return best[0], nil
	default:
		return window.TimeWindow{}, &attendance.AmbiguousMatchError{Candidates: best}
	}
}

// windowsOn lists the category's windows starting on the calendar day of date,
// ordered by start time then id.
func (m *WindowMatcher) windowsOn(ctx context.Context, date time.Time, category window.Category) ([]window.TimeWindow, error) {
	from := window.DayStart(date, m.loc)
	to := from.AddDate(0, 0, 1)

	windows, err := m.windows.ListStartingBetween(ctx, from, to, &category)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows on %s: %w", from.Format("2006-01-02"), err)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		if !windows[i].StartTime.Equal(windows[j].StartTime) {
			return windows[i].StartTime.Before(windows[j].StartTime)
		}
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}
