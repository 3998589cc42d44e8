package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/report"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
)

// digestActor is the identity scheduled jobs read reports as.
var digestActor = user.Actor{UserID: "system:compliance-digest", Role: user.RoleAdmin}

// ComplianceJobs publishes the current period's compliance standing.
type ComplianceJobs struct {
	periodRepo    period.PeriodRepository
	reportService report.ReportService
	loc           *time.Location
	now           func() time.Time
}

func NewComplianceJobs(periodRepo period.PeriodRepository, reportService report.ReportService, loc *time.Location) *ComplianceJobs {
	return &ComplianceJobs{
		periodRepo:    periodRepo,
		reportService: reportService,
		loc:           loc,
		now:           time.Now,
	}
}

func (j *ComplianceJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	return scheduler.AddJob("compliance_digest", spec, j.Digest)
}

// Digest logs every user below a requirement in the current period and sets
// the users_below_threshold gauges. Days outside any period are a no-op.
func (j *ComplianceJobs) Digest(ctx context.Context) error {
	current, err := j.periodRepo.GetContaining(ctx, window.DayStart(j.now(), j.loc))
	if err != nil {
		if errors.Is(err, period.ErrNoActivePeriod) {
			slog.Info("Cron: No active reporting period, skipping compliance digest")
			return nil
		}
		return fmt.Errorf("failed to resolve current period: %w", err)
	}

	rep, err := j.reportService.GeneratePeriodReport(ctx, report.PeriodReportRequest{
		PeriodID: current.ID,
		Actor:    digestActor,
	})
	if err != nil {
		return fmt.Errorf("failed to generate period report: %w", err)
	}

	var belowTeam, belowTravel int
	for _, row := range rep.Rows {
		if !row.Verdict.MeetsTeamRequirement {
			belowTeam++
			slog.Info("Cron: User below team requirement",
				"user_id", row.UserID,
				"username", row.Username,
				"regular_percentage", row.Metrics.Regular.Percentage.Value,
				"regular_status", row.Metrics.Regular.Percentage.Status,
				"outreach_hours", row.Metrics.Outreach.AttendedHours,
			)
		}
		if !row.Verdict.MeetsTravelRequirement {
			belowTravel++
		}
	}

	telemetry.UsersBelowThreshold.WithLabelValues("team").Set(float64(belowTeam))
	telemetry.UsersBelowThreshold.WithLabelValues("travel").Set(float64(belowTravel))
	telemetry.DigestLastRun.SetToCurrentTime()

	slog.Info("Cron: Compliance digest completed",
		"period_id", current.ID,
		"users", len(rep.Rows),
		"below_team", belowTeam,
		"below_travel", belowTravel,
	)
	return nil
}
