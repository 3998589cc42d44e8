package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/auth"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
)

// ActorFromRequest builds the service-layer actor from the verified token claims.
func ActorFromRequest(r *http.Request) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.Actor{}, auth.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Actor{}, auth.ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return user.Actor{}, auth.ErrInvalidToken
	}

	return user.Actor{UserID: userID, Role: user.Role(role)}, nil
}

// AdminOnly requires the admin role
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromRequest(r)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		if !actor.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ActorFromRequest(r)
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			if !actor.Can(permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, actor.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
