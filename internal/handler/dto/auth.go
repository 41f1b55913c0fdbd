// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/supavacation/supavacation/internal/model"

// SignInRequest represents the request body for requesting a sign-in link.
type SignInRequest struct {
	Email string `json:"email"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// MeResponse wraps the current session user.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// ToMeResponse converts a User model to the /api/auth/me response shape.
func ToMeResponse(user *model.User) MeResponse {
	return MeResponse{
		User: UserResponse{
			ID:    user.ID,
			Email: user.Email,
		},
	}
}
