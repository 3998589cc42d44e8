package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meetinghours/attendance-backend/internal/compliance"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/report"
	"github.com/meetinghours/attendance-backend/internal/pkg/telemetry"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportService struct {
	rows     []report.PeriodReportRow
	err      error
	requests []report.PeriodReportRequest
}

func (f *fakeReportService) GeneratePeriodReport(ctx context.Context, req report.PeriodReportRequest) (report.PeriodReport, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return report.PeriodReport{}, f.err
	}
	return report.PeriodReport{Rows: f.rows}, nil
}

func (f *fakeReportService) ExportPeriodReport(ctx context.Context, req report.PeriodReportRequest) (report.ExportFile, error) {
	return report.ExportFile{}, errors.New("not used")
}

func newTestJobs(t *testing.T, reports report.ReportService, today time.Time) *ComplianceJobs {
	t.Helper()
	periods := memory.NewPeriodRepository(memory.NewStore())
	_, err := periods.Create(context.Background(), period.ReportingPeriod{
		ID:        "p-march",
		Name:      "March",
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	jobs := NewComplianceJobs(periods, reports, time.UTC)
	jobs.now = func() time.Time { return today }
	return jobs
}

func TestComplianceJobs_Digest(t *testing.T) {
	// Setup
	reports := &fakeReportService{rows: []report.PeriodReportRow{
		{UserID: "u-1", Username: "ada", Verdict: compliance.Verdict{MeetsTeamRequirement: true, MeetsTravelRequirement: true}},
		{UserID: "u-2", Username: "bob", Verdict: compliance.Verdict{MeetsTeamRequirement: true}},
		{UserID: "u-3", Username: "cal"},
	}}
	jobs := newTestJobs(t, reports, time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC))

	// Act
	err := jobs.Digest(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, reports.requests, 1)
	assert.Equal(t, "p-march", reports.requests[0].PeriodID)
	assert.True(t, reports.requests[0].Actor.IsAdmin())
	assert.Equal(t, 1.0, testutil.ToFloat64(telemetry.UsersBelowThreshold.WithLabelValues("team")))
	assert.Equal(t, 2.0, testutil.ToFloat64(telemetry.UsersBelowThreshold.WithLabelValues("travel")))
	assert.NotZero(t, testutil.ToFloat64(telemetry.DigestLastRun))
}

func TestComplianceJobs_Digest_NoActivePeriod(t *testing.T) {
	reports := &fakeReportService{}
	jobs := newTestJobs(t, reports, time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC))

	err := jobs.Digest(context.Background())

	require.NoError(t, err)
	assert.Empty(t, reports.requests)
}

func TestComplianceJobs_Digest_ReportFailure(t *testing.T) {
	boom := errors.New("store unavailable")
	jobs := newTestJobs(t, &fakeReportService{err: boom}, time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC))

	err := jobs.Digest(context.Background())

	assert.ErrorIs(t, err, boom)
}
