package auth

import (
	"context"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
)

type AuthService interface {
	// LoginWithGoogle finds or creates the user for a Google identity and
	// issues an access token.
	LoginWithGoogle(ctx context.Context, req GoogleLoginRequest, session SessionTrackingRequest) (TokenResponse, error)

	// Me returns the signed-in user.
	Me(ctx context.Context, userID string) (user.UserResponse, error)
}
