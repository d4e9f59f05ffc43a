package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/repository"
)

// MemStore is an in-memory stand-in for *repository.Repository. It returns
// the repository package errors so callers see the same failure modes.
type MemStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	byEmail  map[string]string
	places   map[string]*model.Place
	order    []string
	bookings []*model.Booking
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		places:  make(map[string]*model.Place),
	}
}

func (m *MemStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = repository.NormalizeEmail(u.Email)
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrEmailExists
	}
	cp := *u
	m.users[u.ID] = &cp
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[repository.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *MemStore) CreatePlace(_ context.Context, p *model.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[p.OwnerID]; !ok {
		return repository.ErrOwnerNotFound
	}
	p.UpdatedAt = p.CreatedAt
	m.places[p.ID] = clonePlace(p)
	m.order = append(m.order, p.ID)
	return nil
}

func (m *MemStore) GetPlaceByID(_ context.Context, id string) (*model.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.places[id]
	if !ok {
		return nil, repository.ErrPlaceNotFound
	}
	return clonePlace(p), nil
}

func (m *MemStore) ListPlaces(_ context.Context) ([]*model.Place, error) {
	return m.listPlaces(func(*model.Place) bool { return true }), nil
}

func (m *MemStore) ListPlacesByOwner(_ context.Context, ownerID string) ([]*model.Place, error) {
	return m.listPlaces(func(p *model.Place) bool { return p.OwnerID == ownerID }), nil
}

func (m *MemStore) UpdatePlace(_ context.Context, p *model.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.places[p.ID]
	if !ok {
		return repository.ErrPlaceNotFound
	}
	updated := clonePlace(p)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	m.places[p.ID] = updated
	return nil
}

func (m *MemStore) DeletePlace(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.places[id]; !ok {
		return repository.ErrPlaceNotFound
	}
	delete(m.places, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	m.bookings = slices.DeleteFunc(m.bookings, func(b *model.Booking) bool { return b.PlaceID == id })
	return nil
}

func (m *MemStore) CreateBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.places[b.PlaceID]; !ok {
		return repository.ErrBookingPlaceNotFound
	}
	cp := *b
	cp.Place = nil
	m.bookings = append(m.bookings, &cp)
	return nil
}

func (m *MemStore) ListBookingsByUser(_ context.Context, userID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Booking, 0)
	for i := len(m.bookings) - 1; i >= 0; i-- {
		b := m.bookings[i]
		if b.UserID != userID {
			continue
		}
		cp := *b
		cp.Place = clonePlace(m.places[b.PlaceID])
		out = append(out, &cp)
	}
	return out, nil
}

// listPlaces returns matching places newest first.
func (m *MemStore) listPlaces(keep func(*model.Place) bool) []*model.Place {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Place, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		p := m.places[m.order[i]]
		if keep(p) {
			out = append(out, clonePlace(p))
		}
	}
	return out
}

func clonePlace(p *model.Place) *model.Place {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Photos = slices.Clone(p.Photos)
	cp.Perks = slices.Clone(p.Perks)
	return &cp
}
