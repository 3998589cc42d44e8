package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailExists        = errors.New("email already registered")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrActorRequired          = errors.New("authenticated user is required")
	ErrCannotDemoteSelf       = errors.New("admins cannot remove their own admin privilege")
	ErrCannotDeleteSelf       = errors.New("cannot delete your own account")
)
