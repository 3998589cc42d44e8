package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

// Exclusion is the part of a period's windows a user is excused from.
type Exclusion struct {
	WindowIDs map[string]struct{}
	Duration  time.Duration
}

func (e Exclusion) Contains(windowID string) bool {
	_, ok := e.WindowIDs[windowID]
	return ok
}

func (e Exclusion) Count() int {
	return len(e.WindowIDs)
}

// ExcuseResolver determines how much of a period a user is excused from.
type ExcuseResolver struct {
	excuseRepo excuse.ExcuseRepository
	windowRepo window.WindowRepository
	loc        *time.Location
}

func NewExcuseResolver(excuseRepo excuse.ExcuseRepository, windowRepo window.WindowRepository, loc *time.Location) *ExcuseResolver {
	return &ExcuseResolver{excuseRepo: excuseRepo, windowRepo: windowRepo, loc: loc}
}

// ExcludedDuration sums the durations of the distinct windows of category in p
// that the user holds an excuse for. It is the entry point for callers that
// only need the excused time. Metrics already holds the period's windows and
// also reports the excused count, so it goes through Resolve and must agree
// with this value for regular windows.
func (r *ExcuseResolver) ExcludedDuration(ctx context.Context, userID string, p period.ReportingPeriod, category window.Category) (time.Duration, error) {
	from, to := p.Bounds(r.loc)
	windows, err := r.windowRepo.ListStartingBetween(ctx, from, to, &category)
	if err != nil {
		return 0, fmt.Errorf("failed to list windows in period: %w", err)
	}

	exclusion, err := r.Resolve(ctx, userID, p, windows)
	if err != nil {
		return 0, err
	}
	return exclusion.Duration, nil
}

// Resolve matches the user's excuses for p against windows, which must already
// be restricted to the period. Only regular windows can be excluded.
func (r *ExcuseResolver) Resolve(ctx context.Context, userID string, p period.ReportingPeriod, windows []window.TimeWindow) (Exclusion, error) {
	excuses, err := r.excuseRepo.ListByUserAndPeriod(ctx, userID, p.ID)
	if err != nil {
		return Exclusion{}, fmt.Errorf("failed to list excuses: %w", err)
	}
	return Exclude(windows, excuses), nil
}

// Exclude is the pure part of Resolve. Duplicate excuses for the same window
// count once, and excuses for windows outside windows are ignored.
func Exclude(windows []window.TimeWindow, excuses []excuse.Excuse) Exclusion {
	excused := make(map[string]struct{}, len(excuses))
	for _, e := range excuses {
		excused[e.WindowID] = struct{}{}
	}

	out := Exclusion{WindowIDs: make(map[string]struct{})}
	for _, w := range windows {
		if w.Category != window.CategoryRegular {
			continue
		}
		if _, ok := excused[w.ID]; !ok {
			continue
		}
		if _, seen := out.WindowIDs[w.ID]; seen {
			continue
		}
		out.WindowIDs[w.ID] = struct{}{}
		out.Duration += w.Duration()
	}
	return out
}
