package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("UTC-5", -5*60*60)

func at(day string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}

func twoHourWindow(id string, day string, category window.Category) window.TimeWindow {
	return window.TimeWindow{
		ID:        id,
		StartTime: at(day, "19:00"),
		EndTime:   at(day, "21:00"),
		Category:  category,
	}
}

type metricsFixture struct {
	service *MetricsServiceImpl
	windows window.WindowRepository
	records attendance.RecordRepository
	periods period.PeriodRepository
	excuses excuse.ExcuseRepository
}

func newMetricsFixture(t *testing.T) metricsFixture {
	t.Helper()
	store := memory.NewStore()
	f := metricsFixture{
		windows: memory.NewWindowRepository(store),
		records: memory.NewRecordRepository(store),
		periods: memory.NewPeriodRepository(store),
		excuses: memory.NewExcuseRepository(store),
	}
	svc := NewMetricsService(f.records, f.windows, f.periods, f.excuses, testLoc).(*MetricsServiceImpl)
	svc.now = func() time.Time { return at("2024-03-20", "12:00") }
	f.service = svc

	_, err := f.periods.Create(context.Background(), period.ReportingPeriod{
		ID:        "p-march",
		Name:      "March",
		StartDate: at("2024-03-01", "00:00"),
		EndDate:   at("2024-03-31", "00:00"),
	})
	require.NoError(t, err)
	return f
}

func (f metricsFixture) window(t *testing.T, w window.TimeWindow) {
	t.Helper()
	_, err := f.windows.Create(context.Background(), w)
	require.NoError(t, err)
}

func (f metricsFixture) attend(t *testing.T, userID string, windowID string, credit attendance.Credit) {
	t.Helper()
	r := attendance.Record{ID: userID + "/" + windowID, UserID: userID, WindowID: windowID}
	r.ApplyCredit(credit)
	_, _, err := f.records.Upsert(context.Background(), r)
	require.NoError(t, err)
}

func (f metricsFixture) excuse(t *testing.T, userID string, windowID string) {
	t.Helper()
	_, err := f.excuses.Create(context.Background(), excuse.Excuse{
		ID:       "e/" + userID + "/" + windowID,
		UserID:   userID,
		WindowID: windowID,
		PeriodID: "p-march",
		Reason:   "travel",
	})
	require.NoError(t, err)
}
