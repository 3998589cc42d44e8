package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
)

type Service interface {
	GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error)
	GenerateStreamToken(userID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]time.Time
	mu                        sync.RWMutex
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]time.Time),
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

const streamTokenLifetime = 5 * time.Minute

// GenerateStreamToken issues a short-lived token for opening an event stream,
// which cannot carry an Authorization header.
func (j *JWTService) GenerateStreamToken(userID string) (token string, expiresIn int, err error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "sse",
		"exp":     j.now().Add(streamTokenLifetime).Unix(),
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(streamTokenLifetime.Seconds()), nil
}

// ValidateStreamToken checks signature, expiry and token type and returns
// the user ID.
func (j *JWTService) ValidateStreamToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	if tokenType, ok := token.Get("type"); !ok || tokenType != "sse" {
		return "", jwt.ErrInvalidJWT()
	}
	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return userID, nil
}

// RevokeToken denies token until expiresAt; entries past their expiry are
// pruned on the next revocation.
func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for t, exp := range j.revokedTokens {
		if exp.Before(now) {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}
