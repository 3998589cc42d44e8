package attendance

import (
	"context"
	"testing"
	"time"

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

func dateOf(day string) time.Time {
	return at(day, "00:00")
}

// seedWindow stores a window running from start to end on day.
func seedWindow(t *testing.T, repo window.WindowRepository, id string, day string, start string, end string, category window.Category) window.TimeWindow {
	t.Helper()
	w, err := repo.Create(context.Background(), window.TimeWindow{
		ID:          id,
		StartTime:   at(day, start),
		EndTime:     at(day, end),
		Category:    category,
		Description: id,
		CreatedBy:   "admin-1",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	return w
}

func newTestWindowRepo() window.WindowRepository {
	return memory.NewWindowRepository(memory.NewStore())
}
