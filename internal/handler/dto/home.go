package dto

import (
	"time"

	"github.com/supavacation/supavacation/internal/model"
	"github.com/supavacation/supavacation/internal/service"
)

// HomeRequest represents the request body for creating or updating a home.
// Updates replace the full set of listing fields, matching the edit form.
type HomeRequest struct {
	Image       string  `json:"image"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Guests      int     `json:"guests"`
	Beds        int     `json:"beds"`
	Baths       int     `json:"baths"`
}

// Fields converts the request into service-level home fields.
func (r HomeRequest) Fields() service.HomeFields {
	return service.HomeFields{
		Image:       r.Image,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Guests:      r.Guests,
		Beds:        r.Beds,
		Baths:       r.Baths,
	}
}

// HomeResponse represents a home in API responses.
type HomeResponse struct {
	ID          string    `json:"id"`
	Image       string    `json:"image"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Guests      int       `json:"guests"`
	Beds        int       `json:"beds"`
	Baths       int       `json:"baths"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnerResponse identifies the owning user of a home.
type OwnerResponse struct {
	ID string `json:"id"`
}

// ToHomeResponse converts a Home model to HomeResponse DTO.
func ToHomeResponse(home *model.Home) *HomeResponse {
	return &HomeResponse{
		ID:          home.ID,
		Image:       home.Image,
		Title:       home.Title,
		Description: home.Description,
		Price:       home.Price,
		Guests:      home.Guests,
		Beds:        home.Beds,
		Baths:       home.Baths,
		OwnerID:     home.OwnerID,
		CreatedAt:   home.CreatedAt,
		UpdatedAt:   home.UpdatedAt,
	}
}
