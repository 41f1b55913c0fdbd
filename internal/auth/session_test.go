package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/supavacation/supavacation/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessions_IssueAndValidate(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour)

	user := &model.User{
		ID:    "01HXYZ0000000000000000000A",
		Email: "lena@example.com",
	}

	token, err := sessions.Issue(user)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	sess, err := sessions.Validate(token)
	if err != nil {
		t.Fatalf("validate session: %v", err)
	}

	if sess.UserID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, sess.UserID)
	}
	if sess.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, sess.Email)
	}
	if sess.ExpiresAt.Before(time.Now()) {
		t.Error("session already expired")
	}
}

func TestSessions_ValidateRejectsTampered(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour)

	token, err := sessions.Issue(&model.User{ID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	// Flip a character in the signature segment.
	tampered := token[:len(token)-2] + "xx"

	if _, err := sessions.Validate(tampered); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessions_ValidateRejectsWrongSecret(t *testing.T) {
	issued := NewSessions(testSecret, time.Hour)
	other := NewSessions(strings.Repeat("x", 32), time.Hour)

	token, err := issued.Issue(&model.User{ID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession, got %v", err)
	}
}

func TestSessions_ValidateRejectsExpired(t *testing.T) {
	sessions := NewSessions(testSecret, -time.Minute)

	token, err := sessions.Issue(&model.User{ID: "u1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	if _, err := sessions.Validate(token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestSessions_ValidateRejectsGarbage(t *testing.T) {
	sessions := NewSessions(testSecret, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := sessions.Validate(token); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Validate(%q): expected ErrInvalidSession, got %v", token, err)
		}
	}
}
