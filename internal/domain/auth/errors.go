package auth

import "errors"

var (
	ErrInvalidToken             = errors.New("invalid or expired token")
	ErrTokenRevoked             = errors.New("token has been revoked")
	ErrEmailNotVerified         = errors.New("google account email is not verified")
	ErrEmailDomainNotAllowed    = errors.New("email domain is not allowed to sign in")
	ErrGoogleAccessDeniedByUser = errors.New("google access denied by user")
	ErrStateCookieEmpty         = errors.New("state cookie is empty")
	ErrStateParamEmpty          = errors.New("state parameter is empty")
	ErrStateMismatch            = errors.New("state parameter does not match state cookie")
	ErrCodeValueEmpty           = errors.New("code value is empty")
)
