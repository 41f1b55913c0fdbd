// Package testutil provides helpers shared by integration tests.
package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/supavacation/supavacation/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// UniqueEmail returns an email address unique across test runs.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@test.supavacation.dev", prefix, time.Now().UnixNano())
}

// NewTestUser builds a user with a unique ID and email.
func NewTestUser(prefix string) *model.User {
	return &model.User{
		ID:    ulid.Make().String(),
		Email: UniqueEmail(prefix),
	}
}

// NewTestHome builds a home owned by ownerID with a unique ID.
func NewTestHome(ownerID string) *model.Home {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Home{
		ID:          ulid.Make().String(),
		Image:       "https://images.test.supavacation.dev/home.jpg",
		Title:       "Test home",
		Description: "Integration test listing.",
		Price:       120,
		Guests:      2,
		Beds:        1,
		Baths:       1,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
