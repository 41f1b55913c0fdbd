package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/supavacation/supavacation/internal/metrics"
	"github.com/supavacation/supavacation/internal/model"
	"github.com/supavacation/supavacation/internal/repository"
)

// Home service errors.
var (
	ErrHomeNotFound = errors.New("home not found")
	ErrNotOwner     = errors.New("caller is not the owner of this home")
	ErrInvalidHome  = errors.New("invalid home fields")
)

// HomeStore is the subset of the repository the home service needs.
type HomeStore interface {
	CreateHome(ctx context.Context, home *model.Home) error
	GetHomeByID(ctx context.Context, id string) (*model.Home, error)
	UpdateHome(ctx context.Context, home *model.Home) error
	DeleteHome(ctx context.Context, id string) error
	ListHomeIDs(ctx context.Context) ([]string, error)
	ListHomes(ctx context.Context) ([]*model.Home, error)
	GetHomeOwnerID(ctx context.Context, id string) (string, error)
}

// PageInvalidator drops a cached rendered page after a mutation.
type PageInvalidator interface {
	InvalidatePage(ctx context.Context, homeID string) error
}

// HomeService handles listing business logic. Ownership checks for the owner
// endpoint and for mutations both go through OwnerID, keeping the UI gate and
// the server-side guard on one source of truth.
type HomeService struct {
	store   HomeStore
	pages   PageInvalidator
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewHomeService creates a new HomeService.
func NewHomeService(store HomeStore, pages PageInvalidator, logger *slog.Logger, recorder metrics.Recorder) *HomeService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &HomeService{
		store:   store,
		pages:   pages,
		logger:  logger,
		metrics: recorder,
	}
}

// HomeFields are the caller-supplied fields of a listing. The owner is never
// part of this input: it always comes from the authenticated session.
type HomeFields struct {
	Image       string
	Title       string
	Description string
	Price       float64
	Guests      int
	Beds        int
	Baths       int
}

func (f HomeFields) validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidHome)
	}
	if strings.TrimSpace(f.Image) == "" {
		return fmt.Errorf("%w: image is required", ErrInvalidHome)
	}
	if f.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidHome)
	}
	if f.Guests < 0 || f.Beds < 0 || f.Baths < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidHome)
	}
	return nil
}

// Create persists a new home owned by ownerID.
func (s *HomeService) Create(ctx context.Context, ownerID string, fields HomeFields) (*model.Home, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	home := &model.Home{
		ID:          ulid.Make().String(),
		Image:       fields.Image,
		Title:       fields.Title,
		Description: fields.Description,
		Price:       fields.Price,
		Guests:      fields.Guests,
		Beds:        fields.Beds,
		Baths:       fields.Baths,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateHome(ctx, home); err != nil {
		return nil, fmt.Errorf("create home: %w", err)
	}

	s.metrics.IncHomeCreated()

	return home, nil
}

// GetByID retrieves a home.
func (s *HomeService) GetByID(ctx context.Context, id string) (*model.Home, error) {
	home, err := s.store.GetHomeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return nil, ErrHomeNotFound
		}
		return nil, err
	}
	return home, nil
}

// Update applies new fields to a home after verifying ownership.
func (s *HomeService) Update(ctx context.Context, userID, id string, fields HomeFields) (*model.Home, error) {
	if err := s.requireOwner(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := fields.validate(); err != nil {
		return nil, err
	}

	home, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	home.Image = fields.Image
	home.Title = fields.Title
	home.Description = fields.Description
	home.Price = fields.Price
	home.Guests = fields.Guests
	home.Beds = fields.Beds
	home.Baths = fields.Baths
	home.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateHome(ctx, home); err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return nil, ErrHomeNotFound
		}
		return nil, fmt.Errorf("update home: %w", err)
	}

	s.invalidatePage(ctx, id)
	s.metrics.IncHomeUpdated()

	return home, nil
}

// Delete removes a home after verifying ownership.
func (s *HomeService) Delete(ctx context.Context, userID, id string) error {
	if err := s.requireOwner(ctx, id, userID); err != nil {
		return err
	}

	if err := s.store.DeleteHome(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return ErrHomeNotFound
		}
		return fmt.Errorf("delete home: %w", err)
	}

	s.invalidatePage(ctx, id)
	s.metrics.IncHomeDeleted()

	return nil
}

// ListIDs enumerates all home IDs for page pre-generation.
func (s *HomeService) ListIDs(ctx context.Context) ([]string, error) {
	return s.store.ListHomeIDs(ctx)
}

// ListAll returns all homes, newest first.
func (s *HomeService) ListAll(ctx context.Context) ([]*model.Home, error) {
	return s.store.ListHomes(ctx)
}

// OwnerID returns the owning user's ID for a home.
func (s *HomeService) OwnerID(ctx context.Context, id string) (string, error) {
	ownerID, err := s.store.GetHomeOwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrHomeNotFound) {
			return "", ErrHomeNotFound
		}
		return "", err
	}
	return ownerID, nil
}

// IsOwner reports whether userID owns the home.
func (s *HomeService) IsOwner(ctx context.Context, id, userID string) (bool, error) {
	ownerID, err := s.OwnerID(ctx, id)
	if err != nil {
		return false, err
	}
	return ownerID == userID, nil
}

func (s *HomeService) requireOwner(ctx context.Context, id, userID string) error {
	owner, err := s.IsOwner(ctx, id, userID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotOwner
	}
	return nil
}

// invalidatePage drops the cached page so the next request re-renders.
// A cache error is logged, not propagated: the TTL backstop covers it.
func (s *HomeService) invalidatePage(ctx context.Context, id string) {
	if s.pages == nil {
		return
	}
	if err := s.pages.InvalidatePage(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate cached page", "home_id", id, "error", err)
	}
}
