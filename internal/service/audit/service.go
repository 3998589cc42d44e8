// Package audit finds legacy attendance records whose attribution or credit
// is suspect.
package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
)

// dayOverflowFloor flags explicit ranges this long or longer. Equal start and
// end times were once stored with the end pushed to the next day.
const dayOverflowFloor = 23 * time.Hour

type Reason string

const (
	ReasonSharedDate  Reason = "shared_date"
	ReasonDayOverflow Reason = "day_overflow"
)

type Finding struct {
	RecordID    string
	UserID      string
	WindowID    string
	WindowStart time.Time
	Category    window.Category
	Reason      Reason
	Detail      string
}

type Auditor struct {
	windowRepo window.WindowRepository
	recordRepo attendance.RecordRepository
	loc        *time.Location
}

func NewAuditor(windowRepo window.WindowRepository, recordRepo attendance.RecordRepository, loc *time.Location) *Auditor {
	return &Auditor{windowRepo: windowRepo, recordRepo: recordRepo, loc: loc}
}

// SharedDateRecords lists records without explicit times attached to a window
// that shares its start date and category with another window. A date-only
// submission could have landed on either.
func (a *Auditor) SharedDateRecords(ctx context.Context, from, to time.Time) ([]Finding, error) {
	windows, records, err := a.load(ctx, from, to)
	if err != nil {
		return nil, err
	}

	type dayKey struct {
		date     string
		category window.Category
	}
	siblings := make(map[dayKey][]window.TimeWindow)
	for _, w := range windows {
		key := dayKey{date: w.StartTime.In(a.loc).Format("2006-01-02"), category: w.Category}
		siblings[key] = append(siblings[key], w)
	}

	byID := indexWindows(windows)
	var findings []Finding
	for _, rec := range records {
		if rec.ExplicitTime {
			continue
		}
		w := byID[rec.WindowID]
		shared := siblings[dayKey{date: w.StartTime.In(a.loc).Format("2006-01-02"), category: w.Category}]
		if len(shared) < 2 {
			continue
		}
		findings = append(findings, Finding{
			RecordID:    rec.ID,
			UserID:      rec.UserID,
			WindowID:    w.ID,
			WindowStart: w.StartTime,
			Category:    w.Category,
			Reason:      ReasonSharedDate,
			Detail:      fmt.Sprintf("%d %s windows on this date", len(shared), w.Category),
		})
	}
	sortFindings(findings)
	return findings, nil
}

// DayOverflowRecords lists explicit ranges spanning roughly a full day.
func (a *Auditor) DayOverflowRecords(ctx context.Context, from, to time.Time) ([]Finding, error) {
	windows, records, err := a.load(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byID := indexWindows(windows)
	var findings []Finding
	for _, rec := range records {
		if !rec.ExplicitTime || rec.AttendanceStart == nil || rec.AttendanceEnd == nil {
			continue
		}
		span := rec.AttendanceEnd.Sub(*rec.AttendanceStart)
		if span < dayOverflowFloor {
			continue
		}
		w := byID[rec.WindowID]
		findings = append(findings, Finding{
			RecordID:    rec.ID,
			UserID:      rec.UserID,
			WindowID:    w.ID,
			WindowStart: w.StartTime,
			Category:    w.Category,
			Reason:      ReasonDayOverflow,
			Detail:      fmt.Sprintf("range spans %s", span),
		})
	}
	sortFindings(findings)
	return findings, nil
}

func (a *Auditor) load(ctx context.Context, from, to time.Time) ([]window.TimeWindow, []attendance.Record, error) {
	windows, err := a.windowRepo.ListStartingBetween(ctx, from, to, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("list windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	records, err := a.recordRepo.ListByWindows(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: %w", err)
	}
	return windows, records, nil
}

func indexWindows(windows []window.TimeWindow) map[string]window.TimeWindow {
	byID := make(map[string]window.TimeWindow, len(windows))
	for _, w := range windows {
		byID[w.ID] = w
	}
	return byID
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if !findings[i].WindowStart.Equal(findings[j].WindowStart) {
			return findings[i].WindowStart.Before(findings[j].WindowStart)
		}
		return findings[i].RecordID < findings[j].RecordID
	})
}
