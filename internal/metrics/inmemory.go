package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	Logins          map[string]uint64
	TokensRotated   uint64
	AuthFailures    map[string]uint64
	PlacesCreated   uint64
	PlacesUpdated   uint64
	PlacesDeleted   uint64
	BookingsCreated uint64
	ImagesStored    map[string]uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered uint64
	tokensRotated   uint64
	placesCreated   uint64
	placesUpdated   uint64
	placesDeleted   uint64
	bookingsCreated uint64

	mu           sync.Mutex
	logins       map[string]uint64
	authFailures map[string]uint64
	imagesStored map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		logins:       make(map[string]uint64),
		authFailures: make(map[string]uint64),
		imagesStored: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		Logins:          maps.Clone(m.logins),
		TokensRotated:   atomic.LoadUint64(&m.tokensRotated),
		AuthFailures:    maps.Clone(m.authFailures),
		PlacesCreated:   atomic.LoadUint64(&m.placesCreated),
		PlacesUpdated:   atomic.LoadUint64(&m.placesUpdated),
		PlacesDeleted:   atomic.LoadUint64(&m.placesDeleted),
		BookingsCreated: atomic.LoadUint64(&m.bookingsCreated),
		ImagesStored:    maps.Clone(m.imagesStored),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.inc(m.logins, status)
}

// IncTokenRotated increments the rotation counter.
func (m *InMemoryRecorder) IncTokenRotated() {
	atomic.AddUint64(&m.tokensRotated, 1)
}

// IncAuthFailure counts a rejected session by reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.inc(m.authFailures, reason)
}

// IncPlaceCreated increments place created counter.
func (m *InMemoryRecorder) IncPlaceCreated() {
	atomic.AddUint64(&m.placesCreated, 1)
}

// IncPlaceUpdated increments place updated counter.
func (m *InMemoryRecorder) IncPlaceUpdated() {
	atomic.AddUint64(&m.placesUpdated, 1)
}

// IncPlaceDeleted increments place deleted counter.
func (m *InMemoryRecorder) IncPlaceDeleted() {
	atomic.AddUint64(&m.placesDeleted, 1)
}

// IncBookingCreated increments booking created counter.
func (m *InMemoryRecorder) IncBookingCreated() {
	atomic.AddUint64(&m.bookingsCreated, 1)
}

// IncImageStored counts a stored image by source.
func (m *InMemoryRecorder) IncImageStored(source string) {
	m.inc(m.imagesStored, source)
}

func (m *InMemoryRecorder) inc(counter map[string]uint64, label string) {
	m.mu.Lock()
	counter[label]++
	m.mu.Unlock()
}
