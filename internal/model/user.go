// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account. Users are created implicitly on the
// first successful magic-link verification for an email address and are never
// mutated afterwards.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
