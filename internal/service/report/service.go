package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/meetinghours/attendance-backend/internal/compliance"
	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/report"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
	attendanceService "github.com/meetinghours/attendance-backend/internal/service/attendance"
	metricsService "github.com/meetinghours/attendance-backend/internal/service/metrics"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	userRepo   user.UserRepository
	periodRepo period.PeriodRepository
	windowRepo window.WindowRepository
	recordRepo attendance.RecordRepository
	excuseRepo excuse.ExcuseRepository
	aggregator *metricsService.Aggregator
	policy     compliance.Policy
	loc        *time.Location
	now        func() time.Time
}

func NewReportService(
	userRepo user.UserRepository,
	periodRepo period.PeriodRepository,
	windowRepo window.WindowRepository,
	recordRepo attendance.RecordRepository,
	excuseRepo excuse.ExcuseRepository,
	policy compliance.Policy,
	loc *time.Location,
) report.ReportService {
	return &ReportServiceImpl{
		userRepo:   userRepo,
		periodRepo: periodRepo,
		windowRepo: windowRepo,
		recordRepo: recordRepo,
		excuseRepo: excuseRepo,
		aggregator: metricsService.NewAggregator(attendanceService.NewCreditCalculator()),
		policy:     policy,
		loc:        loc,
		now:        time.Now,
	}
}

// GeneratePeriodReport implements report.ReportService.
func (s *ReportServiceImpl) GeneratePeriodReport(ctx context.Context, req report.PeriodReportRequest) (report.PeriodReport, error) {
	defer telemetry.Since(telemetry.ReportGenerateDuration, time.Now())

	if err := req.Actor.Require(user.PermissionReportsView); err != nil {
		return report.PeriodReport{}, err
	}
	if err := req.Validate(); err != nil {
		return report.PeriodReport{}, err
	}

	p, err := s.periodRepo.GetByID(ctx, req.PeriodID)
	if err != nil {
		if errors.Is(err, period.ErrPeriodNotFound) {
			return report.PeriodReport{}, err
		}
		return report.PeriodReport{}, fmt.Errorf("failed to get reporting period: %w", err)
	}

	from, to := p.Bounds(s.loc)
	windows, err := s.windowRepo.ListStartingBetween(ctx, from, to, nil)
	if err != nil {
		return report.PeriodReport{}, fmt.Errorf("failed to list windows in period: %w", err)
	}
	windowIDs := make([]string, 0, len(windows))
	for _, w := range windows {
		windowIDs = append(windowIDs, w.ID)
	}

	var (
		users   []user.User
		records []attendance.Record
		excuses []excuse.Excuse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.userRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if len(windowIDs) == 0 {
			return nil
		}
		var err error
		records, err = s.recordRepo.ListByWindows(gctx, windowIDs)
		if err != nil {
			return fmt.Errorf("failed to list attendance records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		excuses, err = s.excuseRepo.ListByPeriod(gctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list excuses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.Error("period report data load failed", "period_id", p.ID, "error", err)
		return report.PeriodReport{}, fmt.Errorf("%w: %w", report.ErrReportGenerationFailed, err)
	}

	recordsByUser := make(map[string][]attendance.Record)
	for _, r := range records {
		recordsByUser[r.UserID] = append(recordsByUser[r.UserID], r)
	}
	excusesByUser := make(map[string][]excuse.Excuse)
	for _, e := range excuses {
		excusesByUser[e.UserID] = append(excusesByUser[e.UserID], e)
	}

	rows := make([]report.PeriodReportRow, 0, len(users))
	raw := make(map[string]metrics.UserMetrics, len(users))
	for _, u := range users {
		exclusion := metricsService.Exclude(windows, excusesByUser[u.ID])
		m := s.aggregator.Aggregate(u.ID, p.ID, windows, recordsByUser[u.ID], exclusion)
		raw[u.ID] = m
		rows = append(rows, report.PeriodReportRow{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			Metrics:  metrics.NewMetricsResponse(m),
			Verdict:  s.policy.Evaluate(m),
		})
	}
	SortRows(rows, raw)

	slog.Info("period report generated", "period_id", p.ID, "users", len(rows), "windows", len(windows))

	return report.PeriodReport{
		Period:      period.NewPeriodResponse(p),
		Policy:      s.policy,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}

// SortRows orders rows by unrounded regular percentage, highest first, with
// not-applicable rows last. Ties fall back to username.
func SortRows(rows []report.PeriodReportRow, raw map[string]metrics.UserMetrics) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, oki := raw[rows[i].UserID].RegularPercentage.Get()
		pj, okj := raw[rows[j].UserID].RegularPercentage.Get()
		if oki != okj {
			return oki
		}
		if oki && pi != pj {
			return pi > pj
		}
		return strings.ToLower(rows[i].Username) < strings.ToLower(rows[j].Username)
	})
}
