package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/auth"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/handler/http/response"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
	"github.com/meetinghours/attendance-backend/internal/pkg/oauth"
)

type AuthHandler interface {
	LoginWithGoogle(w http.ResponseWriter, r *http.Request)
	OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService    jwt.Service
	authService   auth.AuthService
	googleService oauth.GoogleService
	frontendURL   string
}

const stateCookieName = "state"

// LoginWithGoogle implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	state := a.googleService.GenerateState(r.UserAgent())
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/v1/auth/oauth/callback/google",
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   strings.HasPrefix(a.frontendURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, a.googleService.RedirectURL(state), http.StatusTemporaryRedirect)
}

// callbackErrors maps callback check failures to the error key the frontend
// receives.
var callbackErrors = map[error]string{
	auth.ErrGoogleAccessDeniedByUser: "access_denied",
	auth.ErrStateCookieEmpty:         "state_cookie_empty",
	auth.ErrStateParamEmpty:          "state_param_empty",
	auth.ErrStateMismatch:            "state_mismatch",
	auth.ErrCodeValueEmpty:           "code_empty",
}

// callbackCode checks the provider's answer against the state cookie and
// returns the authorization code.
func callbackCode(r *http.Request) (string, error) {
	query := r.URL.Query()
	switch providerErr := query.Get("error"); providerErr {
	case "":
	case "access_denied":
		return "", auth.ErrGoogleAccessDeniedByUser
	default:
		return "", fmt.Errorf("provider error: %s", providerErr)
	}

	var state string
	if cookie, err := r.Cookie(stateCookieName); err == nil {
		state = cookie.Value
	}
	switch {
	case state == "":
		return "", auth.ErrStateCookieEmpty
	case query.Get("state") == "":
		return "", auth.ErrStateParamEmpty
	case query.Get("state") != state:
		return "", auth.ErrStateMismatch
	case query.Get("code") == "":
		return "", auth.ErrCodeValueEmpty
	}
	return query.Get("code"), nil
}

// OAuthCallbackGoogle implements AuthHandler. Every outcome redirects to the
// frontend, with either an access token or an error key.
func (a *AuthHandlerImpl) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	redirectWithError := func(errorMsg string) {
		redirectURL := fmt.Sprintf("%s/auth/callback/google?error=%s", a.frontendURL, url.QueryEscape(errorMsg))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	code, err := callbackCode(r)
	if err != nil {
		slog.Error("Rejected OAuth callback", "error", err)
		key, ok := callbackErrors[err]
		if !ok {
			key = "provider_error"
		}
		redirectWithError(key)
		return
	}

	token, err := a.googleService.VerifyToken(r.Context(), code)
	if err != nil {
		slog.Error("Failed to verify token", "error", err)
		redirectWithError("token_verification_failed")
		return
	}

	userGoogle, err := a.googleService.VerifyUser(r.Context(), token)
	if err != nil {
		slog.Error("Failed to verify user", "error", err)
		redirectWithError("user_verification_failed")
		return
	}

	sessionTrackReq := auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
	tokenResponse, err := a.authService.LoginWithGoogle(r.Context(), auth.GoogleLoginRequest{
		Email:         userGoogle.Email,
		GoogleID:      userGoogle.GoogleID,
		Name:          userGoogle.Name,
		VerifiedEmail: userGoogle.VerifiedEmail,
	}, sessionTrackReq)
	if err != nil {
		slog.Error("Failed to login with Google", "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailDomainNotAllowed):
			redirectWithError("domain_not_allowed")
		case errors.Is(err, auth.ErrEmailNotVerified):
			redirectWithError("email_not_verified")
		default:
			redirectWithError("login_failed")
		}
		return
	}

	slog.Info("User logged in successfully via Google OAuth", "user_id", tokenResponse.User.ID)

	redirectURL := fmt.Sprintf("%s/auth/callback/google?access_token=%s&expires_in=%d",
		a.frontendURL,
		url.QueryEscape(tokenResponse.AccessToken),
		tokenResponse.AccessTokenExpiresIn,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// Me implements AuthHandler.
func (a *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromRequest(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	me, err := a.authService.Me(r.Context(), actor.UserID)
	if err != nil {
		slog.Error("Me service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, me)
}

// Logout implements AuthHandler. The access token is denied until it expires.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	token, _, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		response.HandleError(w, auth.ErrInvalidToken)
		return
	}

	a.jwtService.RevokeToken(middleware.RawToken(r), token.Expiration())
	slog.Info("User logged out", "subject", token.Subject())
	response.SuccessWithMessage(w, "User logged out successfully", nil)
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, googleService oauth.GoogleService, frontendURL string) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:    jwtService,
		authService:   authService,
		googleService: googleService,
		frontendURL:   frontendURL,
	}
}
