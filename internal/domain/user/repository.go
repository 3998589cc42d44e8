package user

import "context"

type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)

	// GetByEmail returns ErrUserNotFound when the email is not registered.
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	SetAdmin(ctx context.Context, id string, isAdmin bool) (User, error)
	LinkGoogleAccount(ctx context.Context, id string, googleID string) (User, error)
	TouchLastLogin(ctx context.Context, id string) error

	// Delete removes the user together with their attendance records,
	// excuse requests and excuses.
	Delete(ctx context.Context, id string) error
}
