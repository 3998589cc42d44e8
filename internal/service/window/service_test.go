package window

import (
	"context"
	"testing"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("UTC-5", -5*60*60)

var admin = user.Actor{UserID: "admin-1", Role: user.RoleAdmin}

func newTestService(now time.Time) *WindowServiceImpl {
	svc := NewWindowService(memory.NewWindowRepository(memory.NewStore()), testLoc).(*WindowServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestWindowService_CreateWindow_Success(t *testing.T) {
	// Setup
	svc := newTestService(time.Date(2024, 3, 1, 12, 0, 0, 0, testLoc))

	// Act
	created, err := svc.CreateWindow(context.Background(), window.CreateWindowRequest{
		Date:        "2024-03-05",
		StartTime:   "19:00",
		EndTime:     "21:30",
		Description: "Weekly sync",
		Actor:       admin,
	})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2024-03-05", created.Date)
	assert.Equal(t, "19:00", created.StartTime)
	assert.Equal(t, "21:30", created.EndTime)
	assert.Equal(t, window.CategoryRegular, created.Category, "category defaults to regular")
	assert.InDelta(t, 2.5, created.DurationHours, 1e-9)
	assert.Equal(t, "2024-03-05T19:00:00-05:00", created.StartsAt)

	stored, err := svc.GetWindow(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestWindowService_CreateWindow_Errors(t *testing.T) {
	svc := newTestService(time.Date(2024, 3, 1, 12, 0, 0, 0, testLoc))

	tests := []struct {
		name    string
		req     window.CreateWindowRequest
		wantErr error
	}{
		{
			name:    "member cannot create windows",
			req:     window.CreateWindowRequest{Date: "2024-03-05", StartTime: "19:00", EndTime: "21:00", Actor: user.Actor{UserID: "user-1", Role: user.RoleMember}},
			wantErr: user.ErrAdminPrivilegeRequired,
		},
		{
			name: "end before start",
			req:  window.CreateWindowRequest{Date: "2024-03-05", StartTime: "21:00", EndTime: "19:00", Actor: admin},
		},
		{
			name: "equal start and end",
			req:  window.CreateWindowRequest{Date: "2024-03-05", StartTime: "19:00", EndTime: "19:00", Actor: admin},
		},
		{
			name: "unknown category",
			req:  window.CreateWindowRequest{Date: "2024-03-05", StartTime: "19:00", EndTime: "21:00", Category: "social", Actor: admin},
		},
		{
			name: "malformed date",
			req:  window.CreateWindowRequest{Date: "03/05/2024", StartTime: "19:00", EndTime: "21:00", Actor: admin},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateWindow(context.Background(), tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestWindowService_GetWindow_NotFound(t *testing.T) {
	svc := newTestService(time.Now())

	_, err := svc.GetWindow(context.Background(), "missing")

	assert.ErrorIs(t, err, window.ErrWindowNotFound)
}

func TestWindowService_ListWindows(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Date(2024, 3, 10, 12, 0, 0, 0, testLoc))
	for _, req := range []window.CreateWindowRequest{
		{Date: "2024-02-27", StartTime: "19:00", EndTime: "21:00"},
		{Date: "2024-03-05", StartTime: "19:00", EndTime: "21:00"},
		{Date: "2024-03-09", StartTime: "10:00", EndTime: "12:00", Category: window.CategoryOutreach},
		{Date: "2024-03-31", StartTime: "22:00", EndTime: "23:30"},
		{Date: "2024-04-02", StartTime: "19:00", EndTime: "21:00"},
	} {
		req.Actor = admin
		_, err := svc.CreateWindow(ctx, req)
		require.NoError(t, err)
	}

	t.Run("defaults to the current month", func(t *testing.T) {
		got, err := svc.ListWindows(ctx, window.WindowFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "2024-03-05", got[0].Date)
		assert.Equal(t, "2024-03-09", got[1].Date)
		assert.Equal(t, "2024-03-31", got[2].Date)
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		start, end := "2024-03-09", "2024-04-02"
		got, err := svc.ListWindows(ctx, window.WindowFilter{StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("category filter", func(t *testing.T) {
		category := string(window.CategoryOutreach)
		got, err := svc.ListWindows(ctx, window.WindowFilter{Category: &category})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, window.CategoryOutreach, got[0].Category)
	})

	t.Run("end before start", func(t *testing.T) {
		start, end := "2024-03-09", "2024-03-01"
		_, err := svc.ListWindows(ctx, window.WindowFilter{StartDate: &start, EndDate: &end})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestWindowService_ListUpcoming(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(time.Date(2024, 3, 5, 20, 0, 0, 0, testLoc))
	for _, date := range []string{"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-12", "2024-03-13"} {
		_, err := svc.CreateWindow(ctx, window.CreateWindowRequest{Date: date, StartTime: "19:00", EndTime: "21:00", Actor: admin})
		require.NoError(t, err)
	}

	got, err := svc.ListUpcoming(ctx, window.UpcomingFilter{})

	require.NoError(t, err)
	dates := make([]string, 0, len(got))
	for _, w := range got {
		dates = append(dates, w.Date)
	}
	// Windows already started are excluded; the default horizon is seven days.
	assert.Equal(t, []string{"2024-03-06", "2024-03-12"}, dates)
}
