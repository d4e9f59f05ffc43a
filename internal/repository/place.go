package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/staywell/staywell/internal/model"
)

// Common errors for place repository operations.
var (
	ErrPlaceNotFound = errors.New("place not found")
	ErrOwnerNotFound = errors.New("owner does not exist")
)

const placeColumns = `
	id, owner_id, title, address, photos, description, perks, extra_info,
	check_in, check_out, max_guests, price, created_at, updated_at
`

// CreatePlace inserts a new listing.
func (r *Repository) CreatePlace(ctx context.Context, place *model.Place) error {
	query := `
		INSERT INTO places (` + placeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now().UTC()
	if place.CreatedAt.IsZero() {
		place.CreatedAt = now
	}
	place.UpdatedAt = place.CreatedAt

	_, err := r.pool.Exec(ctx, query,
		place.ID,
		place.OwnerID,
		place.Title,
		place.Address,
		pq.Array(nonNil(place.Photos)),
		place.Description,
		pq.Array(nonNil(place.Perks)),
		place.ExtraInfo,
		place.CheckIn,
		place.CheckOut,
		place.MaxGuests,
		place.Price,
		place.CreatedAt,
		place.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to create place: %w", err)
	}

	return nil
}

// GetPlaceByID retrieves a listing by ID.
func (r *Repository) GetPlaceByID(ctx context.Context, id string) (*model.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place, err := scanPlace(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}

	return place, nil
}

// ListPlaces returns every listing, newest first.
func (r *Repository) ListPlaces(ctx context.Context) ([]*model.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places ORDER BY created_at DESC, id DESC`
	return r.queryPlaces(ctx, query)
}

// ListPlacesByOwner returns the listings created by ownerID, newest first.
func (r *Repository) ListPlacesByOwner(ctx context.Context, ownerID string) ([]*model.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	return r.queryPlaces(ctx, query, ownerID)
}

// UpdatePlace overwrites the editable fields of a listing. The owner is
// never changed.
func (r *Repository) UpdatePlace(ctx context.Context, place *model.Place) error {
	query := `
		UPDATE places
		SET title = $2, address = $3, photos = $4, description = $5, perks = $6,
		    extra_info = $7, check_in = $8, check_out = $9, max_guests = $10,
		    price = $11, updated_at = $12
		WHERE id = $1
	`

	place.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx, query,
		place.ID,
		place.Title,
		place.Address,
		pq.Array(nonNil(place.Photos)),
		place.Description,
		pq.Array(nonNil(place.Perks)),
		place.ExtraInfo,
		place.CheckIn,
		place.CheckOut,
		place.MaxGuests,
		place.Price,
		place.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaceNotFound
	}

	return nil
}

// DeletePlace removes a listing and its bookings.
func (r *Repository) DeletePlace(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaceNotFound
	}
	return nil
}

func (r *Repository) queryPlaces(ctx context.Context, query string, args ...any) ([]*model.Place, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	places := make([]*model.Place, 0)
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, nil
}

func scanPlace(row pgx.Row) (*model.Place, error) {
	var p model.Place
	if err := row.Scan(placeDest(&p)...); err != nil {
		return nil, err
	}
	return &p, nil
}

// placeDest returns scan targets in placeColumns order.
func placeDest(p *model.Place) []any {
	return []any{
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Address,
		pq.Array(&p.Photos),
		&p.Description,
		pq.Array(&p.Perks),
		&p.ExtraInfo,
		&p.CheckIn,
		&p.CheckOut,
		&p.MaxGuests,
		&p.Price,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
