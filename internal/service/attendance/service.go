package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
	"github.com/xeonx/timeago"
)

type AttendanceServiceImpl struct {
	tx         database.Transactor
	recordRepo attendance.RecordRepository
	windowRepo window.WindowRepository
	periodRepo period.PeriodRepository
	matcher    *WindowMatcher
	calculator *CreditCalculator
	loc        *time.Location
	now        func() time.Time
}

// Submit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Submit(ctx context.Context, req attendance.SubmitAttendanceRequest) (attendance.SubmitResponse, error) {
	if err := req.Validate(); err != nil {
		telemetry.ObserveSubmission("unknown", telemetry.OutcomeInvalid)
		return attendance.SubmitResponse{}, err
	}

	sub, err := req.ToSubmission(s.loc)
	if err != nil {
		telemetry.ObserveSubmission("unknown", telemetry.OutcomeInvalid)
		return attendance.SubmitResponse{}, fmt.Errorf("failed to normalize submission: %w", err)
	}

	var (
		saved    attendance.Record
		created  bool
		matched  window.TimeWindow
		credited time.Duration
	)
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		w, err := s.matcher.Match(txCtx, sub.Target)
		if err != nil {
			return err
		}

		c, err := s.calculator.Credit(w, sub.Credit)
		if err != nil {
			return err
		}

		nowUTC := s.now().UTC()
		record, err := s.recordRepo.GetByUserAndWindow(txCtx, sub.UserID, w.ID)
		switch {
		case errors.Is(err, attendance.ErrRecordNotFound):
			id, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("failed to generate record ID: %w", err)
			}
			record = attendance.Record{
				ID:        id.String(),
				UserID:    sub.UserID,
				WindowID:  w.ID,
				CreatedAt: nowUTC,
			}
		case err != nil:
			return fmt.Errorf("failed to get existing attendance record: %w", err)
		}

		record.ApplyCredit(sub.Credit)
		record.Notes = sub.Notes
		record.UpdatedAt = nowUTC

		saved, created, err = s.recordRepo.Upsert(txCtx, record)
		if err != nil {
			return fmt.Errorf("failed to upsert attendance record: %w", err)
		}

		matched = w
		credited = c
		return nil
	})
	target := string(sub.Target.Kind())
	if err != nil {
		telemetry.ObserveSubmission(target, submissionOutcome(err))
		return attendance.SubmitResponse{}, err
	}

	outcome := telemetry.OutcomeEdited
	if created {
		outcome = telemetry.OutcomeCreated
	}
	telemetry.ObserveSubmission(target, outcome)

	slog.Info("attendance submitted",
		"user_id", saved.UserID,
		"window_id", saved.WindowID,
		"credit_kind", sub.Credit.Kind(),
		"outcome", outcome,
		"credited_hours", credited.Hours(),
	)

	return attendance.SubmitResponse{
		Record:  s.toRecordResponse(saved, matched, credited),
		Created: created,
	}, nil
}

// GetRecordForWindow implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecordForWindow(ctx context.Context, userID string, windowID string) (attendance.RecordResponse, error) {
	w, err := s.windowRepo.GetByID(ctx, windowID)
	if err != nil {
		if errors.Is(err, window.ErrWindowNotFound) {
			return attendance.RecordResponse{}, err
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get window: %w", err)
	}

	record, err := s.recordRepo.GetByUserAndWindow(ctx, userID, windowID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.RecordResponse{}, err
		}
		return attendance.RecordResponse{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return s.toRecordResponse(record, w, s.storedCredit(record, w)), nil
}

// HasRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) HasRecord(ctx context.Context, userID string, windowID string) (bool, error) {
	_, err := s.recordRepo.GetByUserAndWindow(ctx, userID, windowID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check attendance record: %w", err)
	}
	return true, nil
}

// ListMyRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListMyRecords(ctx context.Context, filter attendance.MyRecordsFilter) ([]attendance.RecordResponse, error) {
	if validator.IsEmpty(filter.UserID) {
		return nil, validator.ValidationErrors{{Field: "user_id", Message: "user_id is required"}}
	}

	var p period.ReportingPeriod
	var err error
	if filter.PeriodID != nil && *filter.PeriodID != "" {
		p, err = s.periodRepo.GetByID(ctx, *filter.PeriodID)
	} else {
		p, err = s.periodRepo.GetContaining(ctx, window.DayStart(s.now(), s.loc))
	}
	if err != nil {
		if errors.Is(err, period.ErrPeriodNotFound) || errors.Is(err, period.ErrNoActivePeriod) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve reporting period: %w", err)
	}

	from, to := p.Bounds(s.loc)
	windows, err := s.windowRepo.ListStartingBetween(ctx, from, to, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list windows in period: %w", err)
	}
	if len(windows) == 0 {
		return []attendance.RecordResponse{}, nil
	}

	byID := make(map[string]window.TimeWindow, len(windows))
	ids := make([]string, 0, len(windows))
	for _, w := range windows {
		byID[w.ID] = w
		ids = append(ids, w.ID)
	}

	records, err := s.recordRepo.ListByUserAndWindows(ctx, filter.UserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return byID[records[i].WindowID].StartTime.Before(byID[records[j].WindowID].StartTime)
	})

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		w := byID[r.WindowID]
		responses = append(responses, s.toRecordResponse(r, w, s.storedCredit(r, w)))
	}
	return responses, nil
}

// storedCredit recomputes a persisted record's credit. Records that no longer
// earn credit (e.g. rows written before ranges were validated) count as zero.
func (s *AttendanceServiceImpl) storedCredit(r attendance.Record, w window.TimeWindow) time.Duration {
	c, err := s.calculator.Credit(w, r.Credit())
	if err != nil {
		slog.Warn("stored attendance record earns no credit", "record_id", r.ID, "window_id", w.ID, "error", err)
		return 0
	}
	return c
}

func (s *AttendanceServiceImpl) toRecordResponse(r attendance.Record, w window.TimeWindow, credited time.Duration) attendance.RecordResponse {
	wr := window.NewWindowResponse(w, s.loc)
	resp := attendance.RecordResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		WindowID:      r.WindowID,
		Window:        &wr,
		CreditKind:    r.Credit().Kind(),
		PartialHours:  r.PartialHours,
		CreditedHours: math.Round(credited.Hours()*100) / 100,
		Notes:         r.Notes,
		LoggedAgo:     timeago.English.FormatReference(r.UpdatedAt, s.now()),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ExplicitTime {
		resp.AttendanceStart = clockPtr(r.AttendanceStart, s.loc)
		resp.AttendanceEnd = clockPtr(r.AttendanceEnd, s.loc)
	}
	return resp
}

// clockPtr formats t as HH:MM in loc.
func clockPtr(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(loc).Format(validator.ClockLayout)
	return &formatted
}

func submissionOutcome(err error) string {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		return telemetry.OutcomeInvalid
	case errors.Is(err, attendance.ErrInvalidRange), errors.Is(err, attendance.ErrInvalidPartialHours):
		return telemetry.OutcomeInvalidRange
	case errors.Is(err, attendance.ErrNoMatchingWindow):
		return telemetry.OutcomeNoMatch
	case errors.Is(err, attendance.ErrAmbiguousWindow):
		return telemetry.OutcomeAmbiguous
	case errors.Is(err, attendance.ErrNoOverlap):
		return telemetry.OutcomeNoOverlap
	default:
		return telemetry.OutcomeError
	}
}

func NewAttendanceService(
	tx database.Transactor,
	recordRepo attendance.RecordRepository,
	windowRepo window.WindowRepository,
	periodRepo period.PeriodRepository,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:         tx,
		recordRepo: recordRepo,
		windowRepo: windowRepo,
		periodRepo: periodRepo,
		matcher:    NewWindowMatcher(windowRepo, loc),
		calculator: NewCreditCalculator(),
		loc:        loc,
		now:        time.Now,
	}
}
