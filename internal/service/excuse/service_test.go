package excuse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/notification"
	"github.com/meetinghours/attendance-backend/internal/domain/period"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/domain/window"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("UTC-5", -5*60*60)

var (
	admin  = user.Actor{UserID: "admin-1", Role: user.RoleAdmin}
	member = user.Actor{UserID: "user-1", Role: user.RoleMember}
)

func at(day string, clock string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", day+" "+clock, testLoc)
	if err != nil {
		panic(err)
	}
	return t
}

type sentNotification struct {
	recipient string // empty for admins
	n         notification.Notification
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) NotifyUser(_ context.Context, userID string, n notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{recipient: userID, n: n})
}

func (r *recordingNotifier) NotifyAdmins(_ context.Context, n notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{n: n})
}

func (r *recordingNotifier) all() []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentNotification(nil), r.sent...)
}

type excuseFixture struct {
	service  *ExcuseServiceImpl
	excuses  excuse.ExcuseRepository
	requests excuse.RequestRepository
	notifier *recordingNotifier
}

// newExcuseFixture seeds a March period with two regular windows, an outreach
// window, two regular windows on one Saturday, and an April window outside
// every period.
func newExcuseFixture(t *testing.T) excuseFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	windows := memory.NewWindowRepository(store)
	periods := memory.NewPeriodRepository(store)
	f := excuseFixture{
		excuses:  memory.NewExcuseRepository(store),
		requests: memory.NewRequestRepository(store),
		notifier: &recordingNotifier{},
	}

	seed := []struct {
		id, day, start, end string
		category            window.Category
	}{
		{"w-tue", "2024-03-05", "19:00", "21:00", window.CategoryRegular},
		{"w-next-tue", "2024-03-12", "19:00", "21:00", window.CategoryRegular},
		{"w-outreach", "2024-03-09", "10:00", "12:00", window.CategoryOutreach},
		{"w-sat-am", "2024-03-16", "09:00", "11:00", window.CategoryRegular},
		{"w-sat-pm", "2024-03-16", "14:00", "16:00", window.CategoryRegular},
		{"w-april", "2024-04-02", "19:00", "21:00", window.CategoryRegular},
	}
	for _, s := range seed {
		_, err := windows.Create(ctx, window.TimeWindow{ID: s.id, StartTime: at(s.day, s.start), EndTime: at(s.day, s.end), Category: s.category})
		require.NoError(t, err)
	}
	_, err := periods.Create(ctx, period.ReportingPeriod{ID: "p-march", Name: "March", StartDate: at("2024-03-01", "00:00"), EndDate: at("2024-03-31", "00:00")})
	require.NoError(t, err)
	_, err = periods.Create(ctx, period.ReportingPeriod{ID: "p-q2", Name: "Q2 planning", StartDate: at("2024-06-01", "00:00"), EndDate: at("2024-06-30", "00:00")})
	require.NoError(t, err)

	svc := NewExcuseService(memory.NewTransactor(store), f.excuses, f.requests, windows, periods, f.notifier, testLoc).(*ExcuseServiceImpl)
	svc.now = func() time.Time { return at("2024-03-06", "09:00") }
	f.service = svc
	return f
}

func TestExcuseService_CreateExcuse(t *testing.T) {
	ctx := context.Background()

	t.Run("period defaults to the one containing the window", func(t *testing.T) {
		f := newExcuseFixture(t)
		created, err := f.service.CreateExcuse(ctx, excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "travel", Actor: admin})
		require.NoError(t, err)
		assert.Equal(t, "p-march", created.PeriodID)
		assert.Equal(t, "admin-1", created.CreatedBy)
		assert.NotEmpty(t, created.ID)
	})

	t.Run("duplicate excuse is rejected", func(t *testing.T) {
		f := newExcuseFixture(t)
		req := excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "travel", Actor: admin}
		_, err := f.service.CreateExcuse(ctx, req)
		require.NoError(t, err)
		_, err = f.service.CreateExcuse(ctx, req)
		assert.ErrorIs(t, err, excuse.ErrExcuseExists)
	})

	tests := []struct {
		name    string
		req     excuse.CreateExcuseRequest
		wantErr error
	}{
		{
			name:    "outreach cannot be excused",
			req:     excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-outreach", Reason: "travel", Actor: admin},
			wantErr: excuse.ErrOutreachNotExcusable,
		},
		{
			name:    "window outside every period",
			req:     excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-april", Reason: "travel", Actor: admin},
			wantErr: excuse.ErrWindowOutsidePeriod,
		},
		{
			name:    "window outside the given period",
			req:     excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-tue", PeriodID: ptr("p-q2"), Reason: "travel", Actor: admin},
			wantErr: excuse.ErrWindowOutsidePeriod,
		},
		{
			name:    "unknown window",
			req:     excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "missing", Reason: "travel", Actor: admin},
			wantErr: window.ErrWindowNotFound,
		},
		{
			name:    "members cannot create excuses",
			req:     excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "travel", Actor: member},
			wantErr: user.ErrAdminPrivilegeRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newExcuseFixture(t)
			_, err := f.service.CreateExcuse(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExcuseService_RequestExcuse(t *testing.T) {
	ctx := context.Background()

	t.Run("by date resolves the only regular window", func(t *testing.T) {
		f := newExcuseFixture(t)
		created, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", Date: "2024-03-05", Reason: "sick"})
		require.NoError(t, err)
		assert.Equal(t, "w-tue", created.WindowID)
		assert.Equal(t, excuse.RequestStatusPending, created.Status)

		sent := f.notifier.all()
		require.Len(t, sent, 1)
		assert.Empty(t, sent[0].recipient, "requests go to the admins")
		assert.Equal(t, notification.TypeExcuseRequested, sent[0].n.Type)
		assert.Equal(t, "user-1", sent[0].n.SenderID)
		assert.Equal(t, created.ID, sent[0].n.Data["request_id"])
		assert.Contains(t, sent[0].n.Message, "Tue Mar 5 19:00")
	})

	t.Run("by date with two windows is ambiguous", func(t *testing.T) {
		f := newExcuseFixture(t)
		_, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", Date: "2024-03-16", Reason: "sick"})
		assert.ErrorIs(t, err, attendance.ErrAmbiguousWindow)
	})

	t.Run("second pending request is rejected", func(t *testing.T) {
		f := newExcuseFixture(t)
		req := excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "sick"}
		_, err := f.service.RequestExcuse(ctx, req)
		require.NoError(t, err)
		_, err = f.service.RequestExcuse(ctx, req)
		assert.ErrorIs(t, err, excuse.ErrRequestExists)
		assert.Len(t, f.notifier.all(), 1, "a rejected request notifies nobody")
	})

	t.Run("already excused", func(t *testing.T) {
		f := newExcuseFixture(t)
		_, err := f.service.CreateExcuse(ctx, excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "travel", Actor: admin})
		require.NoError(t, err)
		_, err = f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "sick"})
		assert.ErrorIs(t, err, excuse.ErrExcuseExists)
	})

	t.Run("outreach", func(t *testing.T) {
		f := newExcuseFixture(t)
		_, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-outreach", Reason: "sick"})
		assert.ErrorIs(t, err, excuse.ErrOutreachNotExcusable)
	})
}

func TestExcuseService_ApproveRequest(t *testing.T) {
	ctx := context.Background()
	f := newExcuseFixture(t)
	requested, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-next-tue", Reason: "conference"})
	require.NoError(t, err)

	// Act
	approved, err := f.service.ApproveRequest(ctx, excuse.ReviewRequest{RequestID: requested.ID, AdminNotes: "ok", Actor: admin})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, excuse.RequestStatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "admin-1", *approved.ReviewedBy)
	require.NotNil(t, approved.AdminNotes)
	assert.Equal(t, "ok", *approved.AdminNotes)

	excuses, err := f.excuses.ListByUserAndPeriod(ctx, "user-1", "p-march")
	require.NoError(t, err)
	require.Len(t, excuses, 1)
	assert.Equal(t, "w-next-tue", excuses[0].WindowID)
	require.NotNil(t, excuses[0].RequestID)
	assert.Equal(t, requested.ID, *excuses[0].RequestID)

	sent := f.notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, "user-1", sent[1].recipient)
	assert.Equal(t, notification.TypeExcuseApproved, sent[1].n.Type)
	assert.Equal(t, "ok", sent[1].n.Data["admin_notes"])

	_, err = f.service.ApproveRequest(ctx, excuse.ReviewRequest{RequestID: requested.ID, Actor: admin})
	assert.ErrorIs(t, err, excuse.ErrRequestAlreadyProcessed)
	_, err = f.service.DenyRequest(ctx, excuse.ReviewRequest{RequestID: requested.ID, Actor: admin})
	assert.ErrorIs(t, err, excuse.ErrRequestAlreadyProcessed)
}

func TestExcuseService_DenyRequest(t *testing.T) {
	ctx := context.Background()
	f := newExcuseFixture(t)
	requested, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "sick"})
	require.NoError(t, err)

	_, err = f.service.DenyRequest(ctx, excuse.ReviewRequest{RequestID: requested.ID, Actor: member})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	denied, err := f.service.DenyRequest(ctx, excuse.ReviewRequest{RequestID: requested.ID, AdminNotes: "not eligible", Actor: admin})
	require.NoError(t, err)
	assert.Equal(t, excuse.RequestStatusDenied, denied.Status)

	sent := f.notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, "user-1", sent[1].recipient)
	assert.Equal(t, notification.TypeExcuseDenied, sent[1].n.Type)

	exists, err := f.excuses.Exists(ctx, "user-1", "w-tue")
	require.NoError(t, err)
	assert.False(t, exists)

	pending, err := f.service.ListPendingRequests(ctx, excuse.PendingRequestFilter{Actor: admin})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExcuseService_ApproveRequest_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newExcuseFixture(t)
	requested, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-april", Reason: "sick"})
	require.NoError(t, err)

	_, err = f.service.ApproveRequest(ctx, excuse.ReviewRequest{RequestID: requested.ID, Actor: admin})
	require.ErrorIs(t, err, excuse.ErrWindowOutsidePeriod)

	stored, err := f.requests.GetByID(ctx, requested.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPending(), "a failed approval leaves the request pending")
	assert.Nil(t, stored.ReviewedBy)
	assert.Len(t, f.notifier.all(), 1, "only the request itself was announced")
}

func TestExcuseService_ListPendingRequests(t *testing.T) {
	ctx := context.Background()
	f := newExcuseFixture(t)
	_, err := f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "sick"})
	require.NoError(t, err)
	_, err = f.service.RequestExcuse(ctx, excuse.RequestExcuseRequest{UserID: "user-2", WindowID: "w-tue", Reason: "travel"})
	require.NoError(t, err)

	_, err = f.service.ListPendingRequests(ctx, excuse.PendingRequestFilter{Actor: member})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	pending, err := f.service.ListPendingRequests(ctx, excuse.PendingRequestFilter{Actor: admin})
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestExcuseService_ListExcuses(t *testing.T) {
	ctx := context.Background()
	f := newExcuseFixture(t)
	_, err := f.service.CreateExcuse(ctx, excuse.CreateExcuseRequest{UserID: "user-1", WindowID: "w-tue", Reason: "travel", Actor: admin})
	require.NoError(t, err)

	own, err := f.service.ListExcuses(ctx, excuse.ExcuseFilter{UserID: "user-1", PeriodID: "p-march", Actor: member})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = f.service.ListExcuses(ctx, excuse.ExcuseFilter{UserID: "user-2", PeriodID: "p-march", Actor: member})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func ptr[T any](v T) *T { return &v }
