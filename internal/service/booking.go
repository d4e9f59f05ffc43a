package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/repository"
)

// BookingStore persists reservations and reads the places they refer to.
type BookingStore interface {
	GetPlaceByID(ctx context.Context, id string) (*model.Place, error)
	CreateBooking(ctx context.Context, booking *model.Booking) error
	ListBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error)
}

// BookingService handles reservation business logic.
type BookingService struct {
	store   BookingStore
	metrics metrics.Recorder
}

// NewBookingService creates a new BookingService.
func NewBookingService(store BookingStore, recorder metrics.Recorder) *BookingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BookingService{store: store, metrics: recorder}
}

// BookingInput defines input for reserving a place.
type BookingInput struct {
	PlaceID        string
	CheckIn        time.Time
	CheckOut       time.Time
	NumberOfGuests int
	Name           string
	Phone          string
}

// Create reserves a place for identity. The price is the number of nights
// times the place's nightly price.
func (s *BookingService) Create(ctx context.Context, identity model.Identity, input BookingInput) (*model.Booking, error) {
	if identity.IsZero() {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(input.PlaceID) == "" {
		return nil, invalid("place is required")
	}

	place, err := s.store.GetPlaceByID(ctx, input.PlaceID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	nights := model.Nights(input.CheckIn, input.CheckOut)

	switch {
	case input.CheckIn.IsZero() || input.CheckOut.IsZero():
		return nil, invalid("checkIn and checkOut are required")
	case nights < 1:
		return nil, invalid("checkOut must be at least one day after checkIn")
	case input.NumberOfGuests < 1:
		return nil, invalid("numberOfGuests must be at least 1")
	case input.NumberOfGuests > place.MaxGuests:
		return nil, invalid("this place allows at most %d guests", place.MaxGuests)
	case name == "":
		return nil, invalid("name is required")
	case phone == "":
		return nil, invalid("phone is required")
	case place.Price > 0 && int64(nights) > math.MaxInt64/place.Price:
		return nil, invalid("booking total is too large")
	}

	booking := &model.Booking{
		ID:             newID(),
		PlaceID:        place.ID,
		UserID:         identity.ID,
		CheckIn:        input.CheckIn.UTC(),
		CheckOut:       input.CheckOut.UTC(),
		NumberOfGuests: input.NumberOfGuests,
		Name:           name,
		Phone:          phone,
		Price:          int64(nights) * place.Price,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrBookingPlaceNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.IncBookingCreated()

	booking.Place = place
	return booking, nil
}

// ListForUser returns identity's bookings with their places populated.
func (s *BookingService) ListForUser(ctx context.Context, identity model.Identity) ([]*model.Booking, error) {
	if identity.IsZero() {
		return nil, ErrUnauthenticated
	}
	bookings, err := s.store.ListBookingsByUser(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
