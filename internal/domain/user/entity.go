package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"  // Manages windows, periods and excuses
	RoleMember Role = "member" // Logs own attendance
)

type User struct {
	ID              string
	Email           string
	Username        string
	SlackUserID     *string
	OAuthProvider   *string
	OAuthProviderID *string
	IsAdmin         bool
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) Role() Role {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Actor is the already-authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Can reports whether the actor's role grants p.
func (a Actor) Can(p Permission) bool {
	for _, granted := range RolePermissions[a.Role] {
		if granted == p {
			return true
		}
	}
	return false
}

// Require returns ErrAdminPrivilegeRequired when the actor lacks p.
func (a Actor) Require(p Permission) error {
	if a.UserID == "" {
		return ErrActorRequired
	}
	if !a.Can(p) {
		return ErrAdminPrivilegeRequired
	}
	return nil
}
