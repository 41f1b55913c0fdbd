package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/supavacation/supavacation/internal/model"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "auth_token"

// ErrInvalidSession indicates a missing, malformed, expired, or tampered
// session token.
var ErrInvalidSession = errors.New("invalid session")

// Sessions signs and validates the JWT session tokens set after a successful
// magic-link verification.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

// NewSessions creates a session signer/validator.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for a verified user.
func (s *Sessions) Issue(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Validate parses a session token string and returns the session it carries.
// Any failure (bad signature, expiry, wrong algorithm) maps to
// ErrInvalidSession; callers treat that as "no session", never as a crash.
func (s *Sessions) Validate(tokenString string) (*model.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidSession
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidSession
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	return &model.Session{
		UserID:    sub,
		Email:     email,
		ExpiresAt: exp.Time,
	}, nil
}
