package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/auth"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
)

// RawToken returns the bearer token the verifier accepted, header first.
func RawToken(r *http.Request) string {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token
	}
	return jwtauth.TokenFromCookie(r)
}

func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if jwtService.IsTokenRevoked(RawToken(r)) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
