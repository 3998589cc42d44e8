package auth

import (
	"context"
	"testing"

	"github.com/meetinghours/attendance-backend/internal/domain/auth"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
	"github.com/meetinghours/attendance-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
)

type authFixture struct {
	service auth.AuthService
	users   user.UserRepository
	jwt     jwt.Service
}

func newAuthFixture(allowedDomain string, adminEmails ...string) authFixture {
	store := memory.NewStore()
	f := authFixture{
		users: memory.NewUserRepository(store),
		jwt:   jwt.NewJWTService(testSecret, testAccessExp),
	}
	f.service = NewAuthService(memory.NewTransactor(store), f.users, f.jwt, allowedDomain, adminEmails)
	return f
}

func googleLogin(email string) auth.GoogleLoginRequest {
	return auth.GoogleLoginRequest{Email: email, GoogleID: "google-" + email, Name: "Ada Lovelace", VerifiedEmail: true}
}

// Test LoginWithGoogle for new user
func TestAuthService_LoginWithGoogle_NewUser(t *testing.T) {
	ctx := context.Background()
	// Create service
	f := newAuthFixture("example.org")

	// Act
	req := googleLogin("Ada@Example.org")
	resp, err := f.service.LoginWithGoogle(ctx, req, auth.SessionTrackingRequest{IPAddress: "127.0.0.1"})

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotZero(t, resp.AccessTokenExpiresIn)
	assert.Equal(t, "ada@example.org", resp.User.Email)
	assert.Equal(t, "Ada Lovelace", resp.User.Username)
	assert.False(t, resp.User.IsAdmin)

	// Verify user was created
	stored, err := f.users.GetByEmail(ctx, "ada@example.org")
	require.NoError(t, err)
	require.NotNil(t, stored.OAuthProviderID)
	assert.Equal(t, "google-Ada@Example.org", *stored.OAuthProviderID, "provider subject is stored verbatim")
	assert.Equal(t, req.GoogleID, *stored.OAuthProviderID)

	// Verify token claims
	token, err := f.jwt.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	claims := token.PrivateClaims()
	assert.Equal(t, stored.ID, claims["user_id"])
	assert.Equal(t, string(user.RoleMember), claims["role"])
	assert.Equal(t, "access", claims["type"])
}

// Test LoginWithGoogle for existing user
func TestAuthService_LoginWithGoogle_ExistingUser(t *testing.T) {
	ctx := context.Background()
	// Setup
	f := newAuthFixture("")
	existing, err := f.users.Create(ctx, user.User{ID: "u-1", Email: "grace@example.org", Username: "grace"})
	require.NoError(t, err)

	// Act - Link Google to existing account
	resp, err := f.service.LoginWithGoogle(ctx, googleLogin("grace@example.org"), auth.SessionTrackingRequest{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.User.ID)
	assert.Equal(t, "grace", resp.User.Username, "existing username is kept")

	linked, err := f.users.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.OAuthProviderID)
	assert.Equal(t, "google-grace@example.org", *linked.OAuthProviderID)

	all, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAuthService_LoginWithGoogle_AdminEmail(t *testing.T) {
	f := newAuthFixture("", " Boss@Example.org ")

	resp, err := f.service.LoginWithGoogle(context.Background(), googleLogin("boss@example.org"), auth.SessionTrackingRequest{})

	require.NoError(t, err)
	assert.True(t, resp.User.IsAdmin)

	token, err := f.jwt.JWTAuth().Decode(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, string(user.RoleAdmin), token.PrivateClaims()["role"])
}

func TestAuthService_LoginWithGoogle_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		req     auth.GoogleLoginRequest
		wantErr error
	}{
		{
			name:    "unverified email",
			req:     auth.GoogleLoginRequest{Email: "ada@example.org", GoogleID: "g-1", VerifiedEmail: false},
			wantErr: auth.ErrEmailNotVerified,
		},
		{
			name:    "other domain",
			req:     googleLogin("ada@elsewhere.com"),
			wantErr: auth.ErrEmailDomainNotAllowed,
		},
		{
			name:    "lookalike domain",
			req:     googleLogin("ada@notexample.org"),
			wantErr: auth.ErrEmailDomainNotAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture("@example.org")

			_, err := f.service.LoginWithGoogle(context.Background(), tt.req, auth.SessionTrackingRequest{})

			assert.ErrorIs(t, err, tt.wantErr)
			all, listErr := f.users.List(context.Background())
			require.NoError(t, listErr)
			assert.Empty(t, all)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture("")
	resp, err := f.service.LoginWithGoogle(ctx, googleLogin("ada@example.org"), auth.SessionTrackingRequest{})
	require.NoError(t, err)

	me, err := f.service.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.Email, me.Email)

	_, err = f.service.Me(ctx, "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
