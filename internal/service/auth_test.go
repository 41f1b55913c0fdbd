package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/cache"
	"github.com/supavacation/supavacation/internal/model"
)

// fakeUserStore keeps users in memory keyed by email.
type fakeUserStore struct {
	byEmail map[string]*model.User
	err     error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*model.User)}
}

func (f *fakeUserStore) GetOrCreateUserByEmail(ctx context.Context, user *model.User) (*model.User, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if existing, ok := f.byEmail[user.Email]; ok {
		return existing, false, nil
	}
	stored := *user
	stored.CreatedAt = time.Now().UTC()
	f.byEmail[user.Email] = &stored
	return &stored, true, nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

// fakeTokenStore mimics the Redis GETDEL semantics: a token can be
// consumed at most once.
type fakeTokenStore struct {
	tokens   map[string]string
	storeErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (f *fakeTokenStore) StoreSignInToken(ctx context.Context, tokenDigest, email string, ttl time.Duration) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.tokens[tokenDigest] = email
	return nil
}

func (f *fakeTokenStore) ConsumeSignInToken(ctx context.Context, tokenDigest string) (string, error) {
	email, ok := f.tokens[tokenDigest]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	delete(f.tokens, tokenDigest)
	return email, nil
}

type fakeMailer struct {
	signInLinks []string
	signInTo    []string
	welcomeTo   []string
	sendErr     error
}

func (f *fakeMailer) SendSignInLink(ctx context.Context, email, signInURL string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.signInTo = append(f.signInTo, email)
	f.signInLinks = append(f.signInLinks, signInURL)
	return nil
}

func (f *fakeMailer) SendWelcome(ctx context.Context, email string) error {
	f.welcomeTo = append(f.welcomeTo, email)
	return nil
}

type fakeWelcomePublisher struct {
	published []model.User
}

func (f *fakeWelcomePublisher) PublishWelcome(user model.User) {
	f.published = append(f.published, user)
}

type authTestEnv struct {
	users   *fakeUserStore
	tokens  *fakeTokenStore
	mailer  *fakeMailer
	welcome *fakeWelcomePublisher
	svc     *AuthService
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	env := &authTestEnv{
		users:   newFakeUserStore(),
		tokens:  newFakeTokenStore(),
		mailer:  &fakeMailer{},
		welcome: &fakeWelcomePublisher{},
	}
	env.svc = NewAuthService(
		env.users,
		env.tokens,
		env.mailer,
		auth.NewSessions(strings.Repeat("s", 32), time.Hour),
		env.welcome,
		"https://supavacation.test",
		10*time.Minute,
		nil,
	)
	return env
}

// requestAndExtractToken runs RequestSignIn and pulls the plaintext token
// out of the emailed callback URL.
func requestAndExtractToken(t *testing.T, env *authTestEnv, email string) string {
	t.Helper()

	if err := env.svc.RequestSignIn(context.Background(), email); err != nil {
		t.Fatalf("request sign-in: %v", err)
	}

	link := env.mailer.signInLinks[len(env.mailer.signInLinks)-1]
	start := strings.Index(link, "token=")
	if start == -1 {
		t.Fatalf("no token in sign-in link: %s", link)
	}
	token := link[start+len("token="):]
	if end := strings.Index(token, "&"); end != -1 {
		token = token[:end]
	}
	return token
}

func TestRequestSignIn_InvalidEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	tests := []struct {
		name  string
		email string
	}{
		{"empty", ""},
		{"no_at", "not-an-email"},
		{"no_domain", "user@"},
		{"spaces", "user name@example.com"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := env.svc.RequestSignIn(context.Background(), test.email)
			if !errors.Is(err, ErrInvalidEmail) {
				t.Errorf("expected ErrInvalidEmail, got %v", err)
			}
		})
	}

	if len(env.mailer.signInLinks) != 0 {
		t.Errorf("no emails should be sent for invalid addresses, got %d", len(env.mailer.signInLinks))
	}
}

func TestRequestSignIn_StoresDigestNotPlaintext(t *testing.T) {
	env := newAuthTestEnv(t)

	token := requestAndExtractToken(t, env, "lena@example.com")

	if _, ok := env.tokens.tokens[token]; ok {
		t.Error("plaintext token must not be stored")
	}
	if _, ok := env.tokens.tokens[auth.DigestToken(token)]; !ok {
		t.Error("token digest not stored")
	}
}

func TestRequestSignIn_NormalizesEmail(t *testing.T) {
	env := newAuthTestEnv(t)

	requestAndExtractToken(t, env, "  Lena@Example.COM ")

	if env.mailer.signInTo[0] != "lena@example.com" {
		t.Errorf("expected normalized recipient, got %s", env.mailer.signInTo[0])
	}
}

func TestVerifySignIn_CreatesUserAndSession(t *testing.T) {
	env := newAuthTestEnv(t)

	token := requestAndExtractToken(t, env, "lena@example.com")

	sessionToken, user, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com")
	if err != nil {
		t.Fatalf("verify sign-in: %v", err)
	}

	if user.Email != "lena@example.com" {
		t.Errorf("unexpected user email: %s", user.Email)
	}
	if user.ID == "" {
		t.Error("user ID not assigned")
	}

	sess, err := env.svc.SessionFromToken(sessionToken)
	if err != nil {
		t.Fatalf("session token not valid: %v", err)
	}
	if sess.UserID != user.ID {
		t.Errorf("session user %s does not match %s", sess.UserID, user.ID)
	}
}

func TestVerifySignIn_WelcomePublishedExactlyOnce(t *testing.T) {
	env := newAuthTestEnv(t)

	// First sign-in creates the user.
	token := requestAndExtractToken(t, env, "lena@example.com")
	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com"); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	// Second sign-in finds the existing user.
	token = requestAndExtractToken(t, env, "lena@example.com")
	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com"); err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if len(env.welcome.published) != 1 {
		t.Fatalf("expected exactly one welcome publish, got %d", len(env.welcome.published))
	}
	if env.welcome.published[0].Email != "lena@example.com" {
		t.Errorf("welcome published for wrong user: %s", env.welcome.published[0].Email)
	}
}

func TestVerifySignIn_TokenSingleUse(t *testing.T) {
	env := newAuthTestEnv(t)

	token := requestAndExtractToken(t, env, "lena@example.com")

	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com"); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken on reuse, got %v", err)
	}
}

func TestVerifySignIn_EmailMismatch(t *testing.T) {
	env := newAuthTestEnv(t)

	token := requestAndExtractToken(t, env, "lena@example.com")

	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "mallory@example.com"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong email, got %v", err)
	}

	// The token is burned either way.
	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after burned token, got %v", err)
	}
}

func TestVerifySignIn_RejectsMalformedTokens(t *testing.T) {
	env := newAuthTestEnv(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"short", "abc123"},
		{"non_hex", strings.Repeat("zz", 32)},
		{"unknown", strings.Repeat("ab", 32)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := env.svc.VerifySignIn(context.Background(), test.token, "lena@example.com")
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifySignIn_NoWelcomeOnStoreFailure(t *testing.T) {
	env := newAuthTestEnv(t)

	token := requestAndExtractToken(t, env, "lena@example.com")
	env.users.err = errors.New("db down")

	if _, _, err := env.svc.VerifySignIn(context.Background(), token, "lena@example.com"); err == nil {
		t.Fatal("expected error when user store fails")
	}

	if len(env.welcome.published) != 0 {
		t.Errorf("welcome must not be published when user creation fails, got %d", len(env.welcome.published))
	}
}
