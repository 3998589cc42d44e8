package attendance

import (
	"math"
	"testing"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditCalculator_Credit(t *testing.T) {
	w := window.TimeWindow{
		ID:        "w-1",
		StartTime: at("2024-03-05", "19:00"),
		EndTime:   at("2024-03-05", "21:00"),
		Category:  window.CategoryRegular,
	}
	timed := func(start, end string) attendance.TimedRange {
		return attendance.TimedRange{Range: attendance.TimeRange{Start: at("2024-03-05", start), End: at("2024-03-05", end)}}
	}
	calc := NewCreditCalculator()

	tests := []struct {
		name    string
		credit  attendance.Credit
		want    time.Duration
		wantErr error
	}{
		{name: "legacy full credits the window", credit: attendance.LegacyFull{}, want: 2 * time.Hour},
		{name: "legacy partial", credit: attendance.LegacyPartial{Hours: 1.5}, want: 90 * time.Minute},
		{name: "legacy partial is capped", credit: attendance.LegacyPartial{Hours: 5}, want: 2 * time.Hour},
		{name: "legacy partial must be positive", credit: attendance.LegacyPartial{Hours: 0}, wantErr: attendance.ErrInvalidPartialHours},
		{name: "legacy partial rejects NaN", credit: attendance.LegacyPartial{Hours: math.NaN()}, wantErr: attendance.ErrInvalidPartialHours},
		{name: "range inside the window", credit: timed("19:30", "20:30"), want: time.Hour},
		{name: "range clipped to the window", credit: timed("18:00", "20:00"), want: time.Hour},
		{name: "range covering the window", credit: timed("18:00", "23:00"), want: 2 * time.Hour},
		{name: "range outside the window", credit: timed("21:00", "22:00"), wantErr: attendance.ErrNoOverlap},
		{name: "reversed range", credit: timed("20:00", "19:00"), wantErr: attendance.ErrInvalidRange},
		{name: "empty range", credit: timed("20:00", "20:00"), wantErr: attendance.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Credit(w, tt.credit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got, w.Duration())
		})
	}
}
