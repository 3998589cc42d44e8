package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/metrics"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFourRegular(t *testing.T, f metricsFixture) {
	for _, day := range []string{"2024-03-05", "2024-03-12", "2024-03-19", "2024-03-26"} {
		f.window(t, twoHourWindow("w-"+day, day, window.CategoryRegular))
	}
}

func TestMetricsService_Metrics_ThreeOfFourAttended(t *testing.T) {
	ctx := context.Background()
	f := newMetricsFixture(t)
	seedFourRegular(t, f)
	f.attend(t, "user-1", "w-2024-03-05", attendance.LegacyFull{})
	f.attend(t, "user-1", "w-2024-03-12", attendance.LegacyFull{})
	f.attend(t, "user-1", "w-2024-03-19", attendance.LegacyFull{})

	m, err := f.service.Metrics(ctx, "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, metrics.PercentageMeasured, m.RegularPercentage.Status)
	assert.InDelta(t, 75.0, m.RegularPercentage.Value, 1e-9)
	assert.Equal(t, 6*time.Hour, m.RegularAttended)
	assert.Equal(t, 8*time.Hour, m.RegularTotal)
	assert.Equal(t, 4, m.RegularWindowCount)
	assert.Equal(t, 3, m.RegularAttendedCount)
}

func TestMetricsService_Metrics_ExcuseShrinksDenominator(t *testing.T) {
	ctx := context.Background()
	f := newMetricsFixture(t)
	seedFourRegular(t, f)
	f.attend(t, "user-1", "w-2024-03-05", attendance.LegacyFull{})
	f.attend(t, "user-1", "w-2024-03-12", attendance.LegacyFull{})
	f.attend(t, "user-1", "w-2024-03-19", attendance.LegacyFull{})
	f.excuse(t, "user-1", "w-2024-03-26")

	m, err := f.service.Metrics(ctx, "user-1", "p-march")

	require.NoError(t, err)
	assert.InDelta(t, 100.0, m.RegularPercentage.Value, 1e-9)
	assert.Equal(t, 2*time.Hour, m.RegularExcused)
	assert.Equal(t, 1, m.RegularExcusedCount)
	assert.Equal(t, 6*time.Hour, m.Denominator())
}

func TestMetricsService_Metrics_AttendedExcusedWindowExceedsHundred(t *testing.T) {
	ctx := context.Background()
	f := newMetricsFixture(t)
	seedFourRegular(t, f)
	for _, day := range []string{"2024-03-05", "2024-03-12", "2024-03-19", "2024-03-26"} {
		f.attend(t, "user-1", "w-"+day, attendance.LegacyFull{})
	}
	f.excuse(t, "user-1", "w-2024-03-26")

	m, err := f.service.Metrics(ctx, "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, metrics.PercentageMeasured, m.RegularPercentage.Status)
	assert.InDelta(t, 8.0/6.0*100, m.RegularPercentage.Value, 1e-9)
}

func TestMetricsService_Metrics_NoRegularWindows(t *testing.T) {
	f := newMetricsFixture(t)
	f.window(t, twoHourWindow("w-outreach", "2024-03-09", window.CategoryOutreach))

	m, err := f.service.Metrics(context.Background(), "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, metrics.PercentageNoWindows, m.RegularPercentage.Status)
	v, ok := m.RegularPercentage.Get()
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestMetricsService_Metrics_EverythingExcusedIsNotApplicable(t *testing.T) {
	f := newMetricsFixture(t)
	f.window(t, twoHourWindow("w-1", "2024-03-05", window.CategoryRegular))
	f.window(t, twoHourWindow("w-2", "2024-03-12", window.CategoryRegular))
	f.excuse(t, "user-1", "w-1")
	f.excuse(t, "user-1", "w-2")

	m, err := f.service.Metrics(context.Background(), "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, metrics.PercentageNotApplicable, m.RegularPercentage.Status)
	_, ok := m.RegularPercentage.Get()
	assert.False(t, ok)
}

func TestMetricsService_Metrics_OutreachIgnoresExcuses(t *testing.T) {
	f := newMetricsFixture(t)
	f.window(t, twoHourWindow("w-regular", "2024-03-05", window.CategoryRegular))
	f.window(t, twoHourWindow("w-outreach-1", "2024-03-09", window.CategoryOutreach))
	f.window(t, twoHourWindow("w-outreach-2", "2024-03-16", window.CategoryOutreach))
	f.attend(t, "user-1", "w-outreach-1", attendance.LegacyPartial{Hours: 1.5})
	f.excuse(t, "user-1", "w-outreach-2")

	m, err := f.service.Metrics(context.Background(), "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, m.OutreachAttended)
	assert.Equal(t, 4*time.Hour, m.OutreachTotal)
	assert.Equal(t, 2, m.OutreachWindowCount)
	assert.Zero(t, m.RegularExcused)
	assert.InDelta(t, 0.0, m.RegularPercentage.Value, 1e-9)
}

func TestMetricsService_Metrics_WindowsOutsidePeriodIgnored(t *testing.T) {
	f := newMetricsFixture(t)
	f.window(t, twoHourWindow("w-feb", "2024-02-29", window.CategoryRegular))
	f.window(t, twoHourWindow("w-first", "2024-03-01", window.CategoryRegular))
	f.window(t, twoHourWindow("w-last", "2024-03-31", window.CategoryRegular))
	f.window(t, twoHourWindow("w-apr", "2024-04-01", window.CategoryRegular))
	f.attend(t, "user-1", "w-feb", attendance.LegacyFull{})
	f.attend(t, "user-1", "w-last", attendance.LegacyFull{})

	m, err := f.service.Metrics(context.Background(), "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, 2, m.RegularWindowCount, "both period end dates are inclusive")
	assert.InDelta(t, 50.0, m.RegularPercentage.Value, 1e-9)
}

func TestMetricsService_Metrics_TimedRangeCredit(t *testing.T) {
	f := newMetricsFixture(t)
	f.window(t, twoHourWindow("w-1", "2024-03-05", window.CategoryRegular))
	f.attend(t, "user-1", "w-1", attendance.TimedRange{Range: attendance.TimeRange{
		Start: at("2024-03-05", "18:30"),
		End:   at("2024-03-05", "20:00"),
	}})

	m, err := f.service.Metrics(context.Background(), "user-1", "p-march")

	require.NoError(t, err)
	assert.Equal(t, time.Hour, m.RegularAttended)
	assert.InDelta(t, 50.0, m.RegularPercentage.Value, 1e-9)
}

func TestMetricsService_Metrics_Errors(t *testing.T) {
	f := newMetricsFixture(t)

	_, err := f.service.Metrics(context.Background(), "user-1", "")
	assert.ErrorIs(t, err, metrics.ErrPeriodRequired)

	_, err = f.service.Metrics(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, period.ErrPeriodNotFound)
}

func TestMetricsService_GetMetrics_Permissions(t *testing.T) {
	ctx := context.Background()
	f := newMetricsFixture(t)
	seedFourRegular(t, f)
	f.attend(t, "user-1", "w-2024-03-05", attendance.LegacyFull{})

	member := user.Actor{UserID: "user-1", Role: user.RoleMember}
	admin := user.Actor{UserID: "admin-1", Role: user.RoleAdmin}

	t.Run("own metrics default to the current period", func(t *testing.T) {
		resp, err := f.service.GetMetrics(ctx, metrics.MetricsRequest{UserID: "user-1", Actor: member})
		require.NoError(t, err)
		assert.Equal(t, "p-march", resp.PeriodID)
		assert.Equal(t, 25.0, resp.Regular.Percentage.Value)
		assert.Equal(t, 2.0, resp.Regular.AttendedHours)
	})

	t.Run("members cannot read other users", func(t *testing.T) {
		_, err := f.service.GetMetrics(ctx, metrics.MetricsRequest{UserID: "user-2", Actor: member})
		assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
	})

	t.Run("admins read anyone", func(t *testing.T) {
		_, err := f.service.GetMetrics(ctx, metrics.MetricsRequest{UserID: "user-1", Actor: admin})
		assert.NoError(t, err)
	})
}
