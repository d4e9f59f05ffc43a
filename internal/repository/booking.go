package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staywell/staywell/internal/model"
)

// ErrBookingPlaceNotFound is returned when a booking references a missing place.
var ErrBookingPlaceNotFound = errors.New("booked place does not exist")

// CreateBooking inserts a reservation.
func (r *Repository) CreateBooking(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO bookings (id, place_id, user_id, check_in, check_out,
		                      number_of_guests, name, phone, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.PlaceID,
		b.UserID,
		b.CheckIn,
		b.CheckOut,
		b.NumberOfGuests,
		b.Name,
		b.Phone,
		b.Price,
		b.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrBookingPlaceNotFound
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// ListBookingsByUser returns userID's bookings with their places, newest first.
func (r *Repository) ListBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.place_id, b.user_id, b.check_in, b.check_out,
		       b.number_of_guests, b.name, b.phone, b.price, b.created_at,
		       p.id, p.owner_id, p.title, p.address, p.photos, p.description, p.perks,
		       p.extra_info, p.check_in, p.check_out, p.max_guests, p.price,
		       p.created_at, p.updated_at
		FROM bookings b
		JOIN places p ON p.id = b.place_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		b := &model.Booking{Place: &model.Place{}}
		dest := []any{
			&b.ID,
			&b.PlaceID,
			&b.UserID,
			&b.CheckIn,
			&b.CheckOut,
			&b.NumberOfGuests,
			&b.Name,
			&b.Phone,
			&b.Price,
			&b.CreatedAt,
		}
		if err := rows.Scan(append(dest, placeDest(b.Place)...)...); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}
