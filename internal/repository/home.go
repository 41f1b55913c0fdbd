package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/supavacation/supavacation/internal/model"
)

// Common errors for home repository operations.
var (
	ErrHomeNotFound = errors.New("home not found")
)

// CreateHome inserts a new home listing into the database.
func (r *Repository) CreateHome(ctx context.Context, home *model.Home) error {
	query := `
		INSERT INTO homes (id, image, title, description, price, guests, beds, baths, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		home.ID,
		home.Image,
		home.Title,
		home.Description,
		home.Price,
		home.Guests,
		home.Beds,
		home.Baths,
		home.OwnerID,
		home.CreatedAt,
		home.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create home: %w", err)
	}

	return nil
}

// GetHomeByID retrieves a home by its ID.
func (r *Repository) GetHomeByID(ctx context.Context, id string) (*model.Home, error) {
	query := `
		SELECT id, image, title, description, price, guests, beds, baths, owner_id, created_at, updated_at
		FROM homes
		WHERE id = $1
	`

	home, err := scanHome(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHomeNotFound
		}
		return nil, fmt.Errorf("failed to get home by ID: %w", err)
	}

	return home, nil
}

// UpdateHome updates the mutable fields of a home.
func (r *Repository) UpdateHome(ctx context.Context, home *model.Home) error {
	query := `
		UPDATE homes
		SET image = $2, title = $3, description = $4, price = $5, guests = $6, beds = $7, baths = $8, updated_at = $9
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		home.ID,
		home.Image,
		home.Title,
		home.Description,
		home.Price,
		home.Guests,
		home.Beds,
		home.Baths,
		home.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update home: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHomeNotFound
	}

	return nil
}

// DeleteHome removes a home by its ID.
func (r *Repository) DeleteHome(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM homes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete home: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrHomeNotFound
	}

	return nil
}

// ListHomeIDs returns the IDs of all homes, for page pre-generation.
// The result is consistent at read time; staleness against concurrent writes
// is acceptable for page warming.
func (r *Repository) ListHomeIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM homes ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list home IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan home ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate home IDs: %w", err)
	}

	return ids, nil
}

// ListHomes returns all homes, newest first. Used by the index page.
func (r *Repository) ListHomes(ctx context.Context) ([]*model.Home, error) {
	query := `
		SELECT id, image, title, description, price, guests, beds, baths, owner_id, created_at, updated_at
		FROM homes
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list homes: %w", err)
	}
	defer rows.Close()

	var homes []*model.Home
	for rows.Next() {
		home, err := scanHome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan home: %w", err)
		}
		homes = append(homes, home)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate homes: %w", err)
	}

	return homes, nil
}

// GetHomeOwnerID returns the owner's user ID for a home.
// This is the single source of truth for ownership: both the owner endpoint
// and the mutation guards go through it.
func (r *Repository) GetHomeOwnerID(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.pool.QueryRow(ctx, `SELECT owner_id FROM homes WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrHomeNotFound
		}
		return "", fmt.Errorf("failed to get home owner: %w", err)
	}

	return ownerID, nil
}

// scanHome scans a home row from a query result.
func scanHome(row pgx.Row) (*model.Home, error) {
	var home model.Home
	err := row.Scan(
		&home.ID,
		&home.Image,
		&home.Title,
		&home.Description,
		&home.Price,
		&home.Guests,
		&home.Beds,
		&home.Baths,
		&home.OwnerID,
		&home.CreatedAt,
		&home.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &home, nil
}
