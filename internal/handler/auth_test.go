package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/cache"
	"github.com/supavacation/supavacation/internal/middleware"
	"github.com/supavacation/supavacation/internal/model"
	"github.com/supavacation/supavacation/internal/repository"
	"github.com/supavacation/supavacation/internal/service"
)

type memUserStore struct {
	byEmail map[string]*model.User
}

func (m *memUserStore) GetOrCreateUserByEmail(ctx context.Context, user *model.User) (*model.User, bool, error) {
	if existing, ok := m.byEmail[user.Email]; ok {
		return existing, false, nil
	}
	stored := *user
	stored.CreatedAt = time.Now().UTC()
	m.byEmail[user.Email] = &stored
	return &stored, true, nil
}

func (m *memUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type memTokenStore struct {
	tokens map[string]string
}

func (m *memTokenStore) StoreSignInToken(ctx context.Context, tokenDigest, email string, ttl time.Duration) error {
	m.tokens[tokenDigest] = email
	return nil
}

func (m *memTokenStore) ConsumeSignInToken(ctx context.Context, tokenDigest string) (string, error) {
	email, ok := m.tokens[tokenDigest]
	if !ok {
		return "", cache.ErrTokenNotFound
	}
	delete(m.tokens, tokenDigest)
	return email, nil
}

type captureMailer struct {
	links []string
}

func (m *captureMailer) SendSignInLink(ctx context.Context, email, signInURL string) error {
	m.links = append(m.links, signInURL)
	return nil
}

func (m *captureMailer) SendWelcome(ctx context.Context, email string) error {
	return nil
}

type authHandlerEnv struct {
	mailer   *captureMailer
	sessions *auth.Sessions
	router   *chi.Mux
}

func newAuthHandlerEnv(t *testing.T) *authHandlerEnv {
	t.Helper()

	logger := discardLogger()
	mailer := &captureMailer{}
	sessions := auth.NewSessions(strings.Repeat("k", 32), time.Hour)

	svc := service.NewAuthService(
		&memUserStore{byEmail: make(map[string]*model.User)},
		&memTokenStore{tokens: make(map[string]string)},
		mailer,
		sessions,
		nil,
		"https://supavacation.test",
		10*time.Minute,
		nil,
	)
	authHandler := NewAuthHandler(svc, logger, false)
	base := New()

	requireSession := middleware.RequireSession(sessions, logger)

	r := chi.NewRouter()
	r.Route("/api/auth", func(r chi.Router) {
		r.Route("/signin", func(r chi.Router) {
			r.Post("/", authHandler.SignIn)
			r.MethodNotAllowed(base.MethodNotAllowed(http.MethodPost))
		})
		r.Route("/callback", func(r chi.Router) {
			r.Get("/", authHandler.Callback)
			r.MethodNotAllowed(base.MethodNotAllowed(http.MethodGet))
		})
		r.Route("/signout", func(r chi.Router) {
			r.Post("/", authHandler.SignOut)
			r.MethodNotAllowed(base.MethodNotAllowed(http.MethodPost))
		})
		r.Route("/me", func(r chi.Router) {
			r.With(requireSession).Get("/", authHandler.Me)
			r.MethodNotAllowed(base.MethodNotAllowed(http.MethodGet))
		})
	})

	return &authHandlerEnv{mailer: mailer, sessions: sessions, router: r}
}

func (e *authHandlerEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signInLinkPath extracts the path and query of the last emailed link.
func (e *authHandlerEnv) signInLinkPath(t *testing.T) string {
	t.Helper()
	if len(e.mailer.links) == 0 {
		t.Fatal("no sign-in link sent")
	}
	link := e.mailer.links[len(e.mailer.links)-1]
	return strings.TrimPrefix(link, "https://supavacation.test")
}

func TestSignIn_SendsLink(t *testing.T) {
	env := newAuthHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		bytes.NewBufferString(`{"email":"lena@example.com"}`))
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(env.mailer.links) != 1 {
		t.Fatalf("expected one email, got %d", len(env.mailer.links))
	}
	if !strings.Contains(env.mailer.links[0], "/api/auth/callback?token=") {
		t.Errorf("unexpected link: %s", env.mailer.links[0])
	}
}

func TestSignIn_InvalidEmail(t *testing.T) {
	env := newAuthHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		bytes.NewBufferString(`{"email":"nope"}`))
	rec := env.do(req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if len(env.mailer.links) != 0 {
		t.Errorf("no email should be sent, got %d", len(env.mailer.links))
	}
}

func TestSignIn_MethodNotAllowed(t *testing.T) {
	env := newAuthHandlerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/signin", nil)
	rec := env.do(req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Errorf("expected Allow POST, got %q", allow)
	}
}

func TestCallback_SetsSessionCookieAndRedirects(t *testing.T) {
	env := newAuthHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		bytes.NewBufferString(`{"email":"lena@example.com"}`))
	env.do(req)

	req = httptest.NewRequest(http.MethodGet, env.signInLinkPath(t), nil)
	rec := env.do(req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("expected redirect to /, got %s", location)
	}

	cookies := rec.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("session cookie not set")
	}
	if !session.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if session.SameSite != http.SameSiteLaxMode {
		t.Error("session cookie must be SameSite=Lax")
	}

	if _, err := env.sessions.Validate(session.Value); err != nil {
		t.Errorf("session cookie does not validate: %v", err)
	}
}

func TestCallback_InvalidTokenRedirectsWithoutCookie(t *testing.T) {
	env := newAuthHandlerEnv(t)

	forged := strings.Repeat("ab", 32)
	req := httptest.NewRequest(http.MethodGet,
		"/api/auth/callback?token="+forged+"&email=lena%40example.com", nil)
	rec := env.do(req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("expected redirect to /, got %s", location)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie must be set for an invalid token")
	}
}

func TestCallback_TokenSingleUse(t *testing.T) {
	env := newAuthHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		bytes.NewBufferString(`{"email":"lena@example.com"}`))
	env.do(req)

	path := env.signInLinkPath(t)

	first := env.do(httptest.NewRequest(http.MethodGet, path, nil))
	if len(first.Result().Cookies()) == 0 {
		t.Fatal("first callback should set the session cookie")
	}

	second := env.do(httptest.NewRequest(http.MethodGet, path, nil))
	if second.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected status 307, got %d", second.Code)
	}
	if len(second.Result().Cookies()) != 0 {
		t.Error("reused token must not produce a session cookie")
	}
}

func TestSignOut_ClearsCookie(t *testing.T) {
	env := newAuthHandlerEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	rec := env.do(req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != auth.SessionCookieName {
		t.Fatal("expected session cookie in response")
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("expected cookie expiry, got MaxAge %d", cookies[0].MaxAge)
	}
}

func TestMe_RequiresSession(t *testing.T) {
	env := newAuthHandlerEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["message"] != "Unauthorized." {
		t.Errorf("unexpected message: %s", response["message"])
	}
}

func TestMe_ReturnsSessionUser(t *testing.T) {
	env := newAuthHandlerEnv(t)

	// Complete a real sign-in so the user exists in the store.
	env.do(httptest.NewRequest(http.MethodPost, "/api/auth/signin",
		bytes.NewBufferString(`{"email":"lena@example.com"}`)))
	callback := env.do(httptest.NewRequest(http.MethodGet, env.signInLinkPath(t), nil))

	cookies := callback.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("callback did not set a cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	rec := env.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var response struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.User.Email != "lena@example.com" {
		t.Errorf("unexpected email: %s", response.User.Email)
	}
	if response.User.ID == "" {
		t.Error("response missing user id")
	}
}
