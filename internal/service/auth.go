// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/cache"
	gomailer "github.com/supavacation/supavacation/internal/mailer"
	"github.com/supavacation/supavacation/internal/metrics"
	"github.com/supavacation/supavacation/internal/model"
	"github.com/supavacation/supavacation/internal/repository"
)

// Auth service errors.
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrInvalidToken = errors.New("invalid or expired sign-in token")
	ErrUserNotFound = errors.New("user not found")
)

// UserStore is the subset of the repository the auth service needs.
type UserStore interface {
	GetOrCreateUserByEmail(ctx context.Context, user *model.User) (*model.User, bool, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SignInTokenStore holds pending sign-in tokens with a TTL.
type SignInTokenStore interface {
	StoreSignInToken(ctx context.Context, tokenDigest, email string, ttl time.Duration) error
	ConsumeSignInToken(ctx context.Context, tokenDigest string) (string, error)
}

// WelcomePublisher is the post-commit hook for the one-time welcome email.
type WelcomePublisher interface {
	PublishWelcome(user model.User)
}

// AuthService implements magic-link sign-in: it issues one-time emailed
// tokens and exchanges verified tokens for session cookies.
type AuthService struct {
	users    UserStore
	tokens   SignInTokenStore
	mailer   gomailer.Mailer
	sessions *auth.Sessions
	welcome  WelcomePublisher
	baseURL  string
	tokenTTL time.Duration
	metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	users UserStore,
	tokens SignInTokenStore,
	m gomailer.Mailer,
	sessions *auth.Sessions,
	welcome WelcomePublisher,
	baseURL string,
	tokenTTL time.Duration,
	recorder metrics.Recorder,
) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		mailer:   m,
		sessions: sessions,
		welcome:  welcome,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		tokenTTL: tokenTTL,
		metrics:  recorder,
	}
}

// RequestSignIn mints a single-use sign-in token for the email address, stores
// its digest with the configured TTL, and emails the sign-in link. Unlike the
// welcome email, a failure here is surfaced: without the link the user cannot
// log in.
func (s *AuthService) RequestSignIn(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	token, err := auth.GenerateSignInToken()
	if err != nil {
		return fmt.Errorf("generate sign-in token: %w", err)
	}

	if err := s.tokens.StoreSignInToken(ctx, token.Digest, email, s.tokenTTL); err != nil {
		return fmt.Errorf("store sign-in token: %w", err)
	}

	signInURL := fmt.Sprintf("%s/api/auth/callback?token=%s&email=%s",
		s.baseURL, token.Plaintext, url.QueryEscape(email))

	if err := s.mailer.SendSignInLink(ctx, email, signInURL); err != nil {
		return fmt.Errorf("send sign-in link: %w", err)
	}

	s.metrics.IncSignInRequested()

	return nil
}

// VerifySignIn exchanges a sign-in token for a session. The token is consumed
// atomically, so expired, already-used, and forged tokens all fail the same
// way. On the first-ever verification for an email a User row is created and
// the welcome notification is published exactly once, after the commit.
func (s *AuthService) VerifySignIn(ctx context.Context, token, email string) (string, *model.User, error) {
	email = normalizeEmail(email)
	if !auth.ValidateTokenFormat(token) {
		return "", nil, ErrInvalidToken
	}

	storedEmail, err := s.tokens.ConsumeSignInToken(ctx, auth.DigestToken(token))
	if err != nil {
		if errors.Is(err, cache.ErrTokenNotFound) {
			return "", nil, ErrInvalidToken
		}
		return "", nil, fmt.Errorf("consume sign-in token: %w", err)
	}

	// The token must be redeemed for the address it was issued to.
	if storedEmail != email {
		return "", nil, ErrInvalidToken
	}

	user, created, err := s.users.GetOrCreateUserByEmail(ctx, &model.User{
		ID:    ulid.Make().String(),
		Email: email,
	})
	if err != nil {
		return "", nil, fmt.Errorf("get or create user: %w", err)
	}

	if created && s.welcome != nil {
		s.welcome.PublishWelcome(*user)
	}

	sessionToken, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}

	s.metrics.IncSignInCompleted()

	return sessionToken, user, nil
}

// SessionFromToken validates a session cookie value.
func (s *AuthService) SessionFromToken(tokenString string) (*model.Session, error) {
	return s.sessions.Validate(tokenString)
}

// GetUserByID loads a user by ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// SessionTTL returns the session lifetime, used for the cookie Max-Age.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
