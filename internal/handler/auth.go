package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/handler/dto"
	"github.com/supavacation/supavacation/internal/service"
)

// AuthHandler handles HTTP requests for the magic-link sign-in flow.
type AuthHandler struct {
	svc          *service.AuthService
	logger       *slog.Logger
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie should be true in
// production so session cookies are only sent over HTTPS.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// SignIn handles POST /api/auth/signin.
// A valid request always gets the same response regardless of whether the
// address belongs to an existing account.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.svc.RequestSignIn(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			writeMessage(w, http.StatusBadRequest, "A valid email address is required.")
			return
		}
		h.logger.Error("sign-in request failed", "error", err)
		writeInternalError(w)
		return
	}

	h.logger.Info("signin_link_sent")

	writeMessage(w, http.StatusOK, "A sign-in link has been sent to your email address.")
}

// Callback handles GET /api/auth/callback?token=...&email=...
//
// On success the session cookie is set and the user lands on the index
// page. Failures (expired, used, or forged tokens) also redirect to the
// index page with no cookie rather than rendering an error.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	token := query.Get("token")
	email := query.Get("email")

	sessionToken, user, err := h.svc.VerifySignIn(r.Context(), token, email)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidToken) {
			h.logger.Error("sign-in verification failed", "error", err)
		}
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	h.logger.Info("signin_completed", "user_id", user.ID)

	http.SetCookie(w, h.sessionCookie(sessionToken, int(h.svc.SessionTTL().Seconds())))
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// SignOut handles POST /api/auth/signout.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me. Requires a session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
		return
	}

	user, err := h.svc.GetUserByID(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// Valid cookie for an account that no longer exists.
			writeMessage(w, http.StatusUnauthorized, "Unauthorized.")
			return
		}
		h.logger.Error("load session user failed", "error", err, "user_id", sess.UserID)
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMeResponse(user))
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
