package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/repository"
)

const (
	maxTitleLength = 200
	maxPhotos      = 100
	maxPerks       = 50

	// MaxNightlyPrice bounds a listing's price in minor units.
	MaxNightlyPrice int64 = 1_000_000_000
	// MaxGuestsPerPlace bounds a listing's guest capacity.
	MaxGuestsPerPlace = 1000
)

// PlaceStore persists listings.
type PlaceStore interface {
	CreatePlace(ctx context.Context, place *model.Place) error
	GetPlaceByID(ctx context.Context, id string) (*model.Place, error)
	ListPlaces(ctx context.Context) ([]*model.Place, error)
	ListPlacesByOwner(ctx context.Context, ownerID string) ([]*model.Place, error)
	UpdatePlace(ctx context.Context, place *model.Place) error
	DeletePlace(ctx context.Context, id string) error
}

// PlaceService handles listing business logic.
type PlaceService struct {
	store   PlaceStore
	metrics metrics.Recorder
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(store PlaceStore, recorder metrics.Recorder) *PlaceService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PlaceService{store: store, metrics: recorder}
}

// PlaceInput carries the editable fields of a listing.
type PlaceInput struct {
	Title       string
	Address     string
	Photos      []string
	Description string
	Perks       []string
	ExtraInfo   string
	CheckIn     int
	CheckOut    int
	MaxGuests   int
	Price       int64
}

// normalize trims text fields and drops empty list entries.
func (in PlaceInput) normalize() PlaceInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Address = strings.TrimSpace(in.Address)
	in.Description = strings.TrimSpace(in.Description)
	in.ExtraInfo = strings.TrimSpace(in.ExtraInfo)
	in.Photos = compact(in.Photos)
	in.Perks = compact(in.Perks)
	return in
}

func (in PlaceInput) validate() error {
	switch {
	case in.Title == "":
		return invalid("title is required")
	case len(in.Title) > maxTitleLength:
		return invalid("title must be at most %d characters", maxTitleLength)
	case in.MaxGuests < 1:
		return invalid("maxGuests must be at least 1")
	case in.MaxGuests > MaxGuestsPerPlace:
		return invalid("maxGuests must be at most %d", MaxGuestsPerPlace)
	case in.Price < 0:
		return invalid("price must not be negative")
	case in.Price > MaxNightlyPrice:
		return invalid("price must be at most %d", MaxNightlyPrice)
	case in.CheckIn < 0 || in.CheckIn > 23:
		return invalid("checkIn must be an hour between 0 and 23")
	case in.CheckOut < 0 || in.CheckOut > 23:
		return invalid("checkOut must be an hour between 0 and 23")
	case len(in.Photos) > maxPhotos:
		return invalid("at most %d photos are allowed", maxPhotos)
	case len(in.Perks) > maxPerks:
		return invalid("at most %d perks are allowed", maxPerks)
	}
	return nil
}

func (in PlaceInput) apply(p *model.Place) {
	p.Title = in.Title
	p.Address = in.Address
	p.Photos = in.Photos
	p.Description = in.Description
	p.Perks = in.Perks
	p.ExtraInfo = in.ExtraInfo
	p.CheckIn = in.CheckIn
	p.CheckOut = in.CheckOut
	p.MaxGuests = in.MaxGuests
	p.Price = in.Price
}

// Create adds a listing owned by identity.
func (s *PlaceService) Create(ctx context.Context, identity model.Identity, input PlaceInput) (*model.Place, error) {
	if identity.IsZero() {
		return nil, ErrUnauthenticated
	}

	input = input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	place := &model.Place{
		ID:        newID(),
		OwnerID:   identity.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.apply(place)

	if err := s.store.CreatePlace(ctx, place); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	s.metrics.IncPlaceCreated()

	return place, nil
}

// Get retrieves a listing by ID.
func (s *PlaceService) Get(ctx context.Context, id string) (*model.Place, error) {
	place, err := s.store.GetPlaceByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return place, nil
}

// ListAll returns every listing.
func (s *PlaceService) ListAll(ctx context.Context) ([]*model.Place, error) {
	places, err := s.store.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

// ListByOwner returns the listings created by identity.
func (s *PlaceService) ListByOwner(ctx context.Context, identity model.Identity) ([]*model.Place, error) {
	if identity.IsZero() {
		return nil, ErrUnauthenticated
	}
	places, err := s.store.ListPlacesByOwner(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

// Update overwrites a listing. Only the owner may update it; anyone else
// gets ErrForbidden and the listing is left unchanged.
func (s *PlaceService) Update(ctx context.Context, identity model.Identity, id string, input PlaceInput) (*model.Place, error) {
	place, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(identity, place); err != nil {
		return nil, err
	}

	input = input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}
	input.apply(place)

	if err := s.store.UpdatePlace(ctx, place); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, fmt.Errorf("failed to update place: %w", err)
	}

	s.metrics.IncPlaceUpdated()

	return place, nil
}

// Delete removes a listing and its bookings. Only the owner may delete it.
func (s *PlaceService) Delete(ctx context.Context, identity model.Identity, id string) error {
	place, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(identity, place); err != nil {
		return err
	}

	if err := s.store.DeletePlace(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return ErrPlaceNotFound
		}
		return fmt.Errorf("failed to delete place: %w", err)
	}

	s.metrics.IncPlaceDeleted()

	return nil
}

// compact trims entries and drops empty ones, keeping order.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
