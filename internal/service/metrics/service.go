package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
	attendanceService "github.com/meetinghours/attendance-backend/internal/service/attendance"
)

type MetricsServiceImpl struct {
	recordRepo attendance.RecordRepository
	windowRepo window.WindowRepository
	periodRepo period.PeriodRepository
	resolver   *ExcuseResolver
	aggregator *Aggregator
	loc        *time.Location
	now        func() time.Time
}

// Metrics implements metrics.MetricsService.
func (s *MetricsServiceImpl) Metrics(ctx context.Context, userID string, periodID string) (metrics.UserMetrics, error) {
	defer telemetry.Since(telemetry.MetricsComputeDuration, time.Now())

	if periodID == "" {
		return metrics.UserMetrics{}, metrics.ErrPeriodRequired
	}

	p, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, period.ErrPeriodNotFound) {
			return metrics.UserMetrics{}, err
		}
		return metrics.UserMetrics{}, fmt.Errorf("failed to get reporting period: %w", err)
	}

	from, to := p.Bounds(s.loc)
	windows, err := s.windowRepo.ListStartingBetween(ctx, from, to, nil)
	if err != nil {
		return metrics.UserMetrics{}, fmt.Errorf("failed to list windows in period: %w", err)
	}

	ids := make([]string, 0, len(windows))
	for _, w := range windows {
		ids = append(ids, w.ID)
	}

	var records []attendance.Record
	if len(ids) > 0 {
		records, err = s.recordRepo.ListByUserAndWindows(ctx, userID, ids)
		if err != nil {
			return metrics.UserMetrics{}, fmt.Errorf("failed to list attendance records: %w", err)
		}
	}

	exclusion, err := s.resolver.Resolve(ctx, userID, p, windows)
	if err != nil {
		return metrics.UserMetrics{}, err
	}

	return s.aggregator.Aggregate(userID, p.ID, windows, records, exclusion), nil
}

// GetMetrics implements metrics.MetricsService.
func (s *MetricsServiceImpl) GetMetrics(ctx context.Context, req metrics.MetricsRequest) (metrics.MetricsResponse, error) {
	if err := req.Validate(); err != nil {
		return metrics.MetricsResponse{}, err
	}

	permission := user.PermissionMetricsViewOwn
	if req.UserID != req.Actor.UserID {
		permission = user.PermissionMetricsViewAll
	}
	if err := req.Actor.Require(permission); err != nil {
		return metrics.MetricsResponse{}, err
	}

	var periodID string
	if req.PeriodID != nil {
		periodID = *req.PeriodID
	} else {
		current, err := s.periodRepo.GetContaining(ctx, window.DayStart(s.now(), s.loc))
		if err != nil {
			if errors.Is(err, period.ErrNoActivePeriod) {
				return metrics.MetricsResponse{}, err
			}
			return metrics.MetricsResponse{}, fmt.Errorf("failed to resolve current period: %w", err)
		}
		periodID = current.ID
	}

	m, err := s.Metrics(ctx, req.UserID, periodID)
	if err != nil {
		return metrics.MetricsResponse{}, err
	}

	slog.Debug("metrics computed",
		"user_id", m.UserID,
		"period_id", m.PeriodID,
		"regular_status", m.RegularPercentage.Status,
		"regular_windows", m.RegularWindowCount,
	)

	return metrics.NewMetricsResponse(m), nil
}

func NewMetricsService(
	recordRepo attendance.RecordRepository,
	windowRepo window.WindowRepository,
	periodRepo period.PeriodRepository,
	excuseRepo excuse.ExcuseRepository,
	loc *time.Location,
) metrics.MetricsService {
	return &MetricsServiceImpl{
		recordRepo: recordRepo,
		windowRepo: windowRepo,
		periodRepo: periodRepo,
		resolver:   NewExcuseResolver(excuseRepo, windowRepo, loc),
		aggregator: NewAggregator(attendanceService.NewCreditCalculator()),
		loc:        loc,
		now:        time.Now,
	}
}
