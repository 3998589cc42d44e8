package user

import "time"

type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	IsAdmin     bool    `json:"is_admin"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type SetAdminRequest struct {
	UserID  string `json:"-"`
	IsAdmin bool   `json:"is_admin"`
	Actor   Actor  `json:"-"`
}

type DeleteUserRequest struct {
	UserID string
	Actor  Actor
}

func NewUserResponse(u User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.LastLoginAt != nil {
		s := u.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &s
	}
	return resp
}
