package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meetinghours/attendance-backend/internal/domain/auth"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/database"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	jwt.Service
	allowedDomain string
	adminEmails   map[string]struct{}
	now           func() time.Time
}

// NewAuthService builds the sign-in service. An empty allowedDomain lets any
// verified Google account in; adminEmails are granted admin on first sign-in.
func NewAuthService(tx database.Transactor, userRepository user.UserRepository, jwtService jwt.Service, allowedDomain string, adminEmails []string) auth.AuthService {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &AuthServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
		Service:        jwtService,
		allowedDomain:  strings.ToLower(strings.TrimPrefix(allowedDomain, "@")),
		adminEmails:    admins,
		now:            time.Now,
	}
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, req auth.GoogleLoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if !req.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrEmailNotVerified
	}
	if a.allowedDomain != "" && !strings.HasSuffix(req.Email, "@"+a.allowedDomain) {
		return auth.TokenResponse{}, auth.ErrEmailDomainNotAllowed
	}

	var userData user.User
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := a.UserRepository.GetByEmail(txCtx, req.Email)
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			// User does not exist so we create one
			userData, err = a.createGoogleUser(txCtx, req)
			if err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to get user data by email: %w", err)
		default:
			userData = existing
			if userData.OAuthProviderID == nil {
				userData, err = a.UserRepository.LinkGoogleAccount(txCtx, userData.ID, req.GoogleID)
				if err != nil {
					return fmt.Errorf("failed to link google account: %w", err)
				}
			}
		}

		if err := a.UserRepository.TouchLastLogin(txCtx, userData.ID); err != nil {
			return fmt.Errorf("failed to record last login: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	accessToken, expiresAt, err := a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.Role())
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.Info("user signed in with google",
		"user_id", userData.ID,
		"role", userData.Role(),
		"ip_address", session.IPAddress,
		"user_agent", session.UserAgent,
	)

	return auth.TokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresIn: expiresAt,
		User:                 user.NewUserResponse(userData),
	}, nil
}

func (a *AuthServiceImpl) createGoogleUser(ctx context.Context, req auth.GoogleLoginRequest) (user.User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return user.User{}, fmt.Errorf("failed to generate user ID: %w", err)
	}

	username := strings.TrimSpace(req.Name)
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}
	_, isAdmin := a.adminEmails[req.Email]
	provider := "google"
	googleID := req.GoogleID
	nowUTC := a.now().UTC()

	created, err := a.UserRepository.Create(ctx, user.User{
		ID:              id.String(),
		Email:           req.Email,
		Username:        username,
		OAuthProvider:   &provider,
		OAuthProviderID: &googleID,
		IsAdmin:         isAdmin,
		CreatedAt:       nowUTC,
		UpdatedAt:       nowUTC,
	})
	if err != nil {
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered via google", "user_id", created.ID, "is_admin", created.IsAdmin)
	return created, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user.NewUserResponse(u), nil
}
