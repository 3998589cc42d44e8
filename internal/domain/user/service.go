package user

import "context"

type UserService interface {
	ListUsers(ctx context.Context, actor Actor) ([]UserResponse, error)
	SetAdmin(ctx context.Context, req SetAdminRequest) (UserResponse, error)
	DeleteUser(ctx context.Context, req DeleteUserRequest) error
}
