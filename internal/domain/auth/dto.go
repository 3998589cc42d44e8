package auth

import (
	"strings"

	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/pkg/validator"
)

// GoogleLoginRequest is the verified identity returned by Google.
type GoogleLoginRequest struct {
	Email         string
	GoogleID      string
	Name          string
	VerifiedEmail bool
}

func (r *GoogleLoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if validator.IsEmpty(r.GoogleID) {
		errs = append(errs, validator.ValidationError{
			Field:   "google_id",
			Message: "google_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken          string            `json:"access_token"`
	AccessTokenExpiresIn int64             `json:"access_token_expires_in"`
	User                 user.UserResponse `json:"user"`
}
