package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
)

type UserServiceImpl struct {
	user.UserRepository
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context, actor user.Actor) ([]user.UserResponse, error) {
	if err := actor.Require(user.PermissionUserManage); err != nil {
		return nil, err
	}

	users, err := s.UserRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, user.NewUserResponse(u))
	}
	return responses, nil
}

// SetAdmin implements user.UserService.
func (s *UserServiceImpl) SetAdmin(ctx context.Context, req user.SetAdminRequest) (user.UserResponse, error) {
	if err := req.Actor.Require(user.PermissionUserManage); err != nil {
		return user.UserResponse{}, err
	}
	if req.UserID == req.Actor.UserID && !req.IsAdmin {
		return user.UserResponse{}, user.ErrCannotDemoteSelf
	}

	updated, err := s.UserRepository.SetAdmin(ctx, req.UserID, req.IsAdmin)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, err
		}
		return user.UserResponse{}, fmt.Errorf("failed to update admin flag: %w", err)
	}

	slog.Info("user admin flag changed", "user_id", updated.ID, "is_admin", updated.IsAdmin, "changed_by", req.Actor.UserID)
	return user.NewUserResponse(updated), nil
}

// DeleteUser implements user.UserService.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, req user.DeleteUserRequest) error {
	if err := req.Actor.Require(user.PermissionUserManage); err != nil {
		return err
	}
	if req.UserID == req.Actor.UserID {
		return user.ErrCannotDeleteSelf
	}

	if err := s.UserRepository.Delete(ctx, req.UserID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user deleted", "user_id", req.UserID, "deleted_by", req.Actor.UserID)
	return nil
}

func NewUserService(userRepository user.UserRepository) user.UserService {
	return &UserServiceImpl{UserRepository: userRepository}
}
