package user

import (
	"context"
	"testing"

	"github.com/meetinghours/attendance-backend/internal/domain/attendance"
	"github.com/meetinghours/attendance-backend/internal/domain/excuse"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = user.Actor{UserID: "u-admin", Role: user.RoleAdmin}

func newTestService(t *testing.T) user.UserService {
	t.Helper()
	repo := memory.NewUserRepository(memory.NewStore())
	for _, u := range []user.User{
		{ID: "u-admin", Email: "admin@example.org", Username: "admin", IsAdmin: true},
		{ID: "u-1", Email: "ada@example.org", Username: "ada"},
	} {
		_, err := repo.Create(context.Background(), u)
		require.NoError(t, err)
	}
	return NewUserService(repo)
}

func TestUserService_ListUsers(t *testing.T) {
	svc := newTestService(t)

	users, err := svc.ListUsers(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.ListUsers(context.Background(), user.Actor{UserID: "u-1", Role: user.RoleMember})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = svc.ListUsers(context.Background(), user.Actor{})
	assert.ErrorIs(t, err, user.ErrActorRequired)
}

func TestUserService_SetAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	promoted, err := svc.SetAdmin(ctx, user.SetAdminRequest{UserID: "u-1", IsAdmin: true, Actor: admin})
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)

	_, err = svc.SetAdmin(ctx, user.SetAdminRequest{UserID: "u-admin", IsAdmin: false, Actor: admin})
	assert.ErrorIs(t, err, user.ErrCannotDemoteSelf)

	demoted, err := svc.SetAdmin(ctx, user.SetAdminRequest{UserID: "u-admin", IsAdmin: false, Actor: user.Actor{UserID: "u-1", Role: user.RoleAdmin}})
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = svc.SetAdmin(ctx, user.SetAdminRequest{UserID: "missing", IsAdmin: true, Actor: admin})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserService_DeleteUser_RemovesUserData(t *testing.T) {
	// Setup
	ctx := context.Background()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	records := memory.NewRecordRepository(store)
	excuses := memory.NewExcuseRepository(store)
	requests := memory.NewRequestRepository(store)
	for _, u := range []user.User{
		{ID: "u-admin", Email: "admin@example.org", Username: "admin", IsAdmin: true},
		{ID: "u-1", Email: "ada@example.org", Username: "ada"},
		{ID: "u-2", Email: "grace@example.org", Username: "grace"},
	} {
		_, err := users.Create(ctx, u)
		require.NoError(t, err)
	}
	for _, id := range []string{"u-1", "u-2"} {
		_, _, err := records.Upsert(ctx, attendance.Record{ID: "r-" + id, UserID: id, WindowID: "w-1"})
		require.NoError(t, err)
		_, err = excuses.Create(ctx, excuse.Excuse{ID: "e-" + id, UserID: id, WindowID: "w-2", PeriodID: "p-1"})
		require.NoError(t, err)
		_, err = requests.Create(ctx, excuse.Request{ID: "q-" + id, UserID: id, WindowID: "w-3", Status: excuse.RequestStatusPending})
		require.NoError(t, err)
	}
	svc := NewUserService(users)

	// Act
	err := svc.DeleteUser(ctx, user.DeleteUserRequest{UserID: "u-1", Actor: admin})

	// Assert
	require.NoError(t, err)
	_, err = users.GetByID(ctx, "u-1")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	_, err = records.GetByUserAndWindow(ctx, "u-1", "w-1")
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
	gone, err := excuses.ListByUserAndPeriod(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.Empty(t, gone)
	pending, err := requests.HasPending(ctx, "u-1", "w-3")
	require.NoError(t, err)
	assert.False(t, pending)

	_, err = records.GetByUserAndWindow(ctx, "u-2", "w-1")
	assert.NoError(t, err, "other users keep their records")
	kept, err := excuses.ListByUserAndPeriod(ctx, "u-2", "p-1")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
	pending, err = requests.HasPending(ctx, "u-2", "w-3")
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestUserService_DeleteUser_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		req     user.DeleteUserRequest
		wantErr error
	}{
		{"self", user.DeleteUserRequest{UserID: "u-admin", Actor: admin}, user.ErrCannotDeleteSelf},
		{"member", user.DeleteUserRequest{UserID: "u-admin", Actor: user.Actor{UserID: "u-1", Role: user.RoleMember}}, user.ErrAdminPrivilegeRequired},
		{"anonymous", user.DeleteUserRequest{UserID: "u-1"}, user.ErrActorRequired},
		{"missing", user.DeleteUserRequest{UserID: "missing", Actor: admin}, user.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t)

			err := svc.DeleteUser(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			users, listErr := svc.ListUsers(context.Background(), admin)
			require.NoError(t, listErr)
			assert.Len(t, users, 2)
		})
	}
}
