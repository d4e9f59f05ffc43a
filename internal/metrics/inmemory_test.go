package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncUserRegistered()
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginWrongPassword)
	m.IncAuthFailure("expired")
	m.IncTokenRotated()
	m.IncPlaceCreated()
	m.IncPlaceUpdated()
	m.IncPlaceDeleted()
	m.IncBookingCreated()
	m.IncImageStored(ImageFromLink)

	snap := m.Snapshot()
	if snap.UsersRegistered != 1 || snap.TokensRotated != 1 || snap.BookingsCreated != 1 {
		t.Errorf("unexpected counters: %+v", snap)
	}
	if snap.Logins[LoginSuccess] != 2 || snap.Logins[LoginWrongPassword] != 1 {
		t.Errorf("Logins = %v", snap.Logins)
	}
	if snap.AuthFailures["expired"] != 1 {
		t.Errorf("AuthFailures = %v", snap.AuthFailures)
	}
	if snap.PlacesCreated != 1 || snap.PlacesUpdated != 1 || snap.PlacesDeleted != 1 {
		t.Errorf("place counters = %d/%d/%d", snap.PlacesCreated, snap.PlacesUpdated, snap.PlacesDeleted)
	}
	if snap.ImagesStored[ImageFromLink] != 1 {
		t.Errorf("ImagesStored = %v", snap.ImagesStored)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncLogin(LoginSuccess)

	snap := m.Snapshot()
	snap.Logins[LoginSuccess] = 100

	if got := m.Snapshot().Logins[LoginSuccess]; got != 1 {
		t.Errorf("snapshot mutation leaked: %d", got)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncAuthFailure("malformed")
			m.IncPlaceCreated()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.AuthFailures["malformed"] != 50 || snap.PlacesCreated != 50 {
		t.Errorf("lost updates: %v %d", snap.AuthFailures, snap.PlacesCreated)
	}
}

func TestNoop_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncLogin(LoginSuccess)
	r.IncImageStored(ImageFromUpload)
}
