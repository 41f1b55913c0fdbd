package middleware

import (
	"log/slog"
	"net/http"

	"github.com/supavacation/supavacation/internal/auth"
	"github.com/supavacation/supavacation/internal/model"
)

// SessionValidator validates a session token and returns the session it
// carries. Implemented by auth.Sessions.
type SessionValidator interface {
	Validate(token string) (*model.Session, error)
}

// OptionalSession returns middleware that attaches the session to the
// request context when a valid session cookie is present. Requests without
// a cookie, or with an invalid one, pass through unauthenticated.
func OptionalSession(sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess := sessionFromRequest(r, sessions); sess != nil {
				r = r.WithContext(auth.ContextWithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns middleware that rejects requests without a valid
// session cookie. The session is attached to the request context for
// downstream handlers.
func RequireSession(sessions SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFromRequest(r, sessions)
			if sess == nil {
				logger.DebugContext(r.Context(), "unauthenticated request rejected",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Unauthorized."}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithSession(r.Context(), sess)))
		})
	}
}

func sessionFromRequest(r *http.Request, sessions SessionValidator) *model.Session {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sess, err := sessions.Validate(cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}
