package service

import (
	"context"
	"errors"
	"testing"

	"github.com/staywell/staywell/internal/model"
)

func TestPlaceCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Owner", "owner@x.com")

	tests := []struct {
		name   string
		mutate func(*PlaceInput)
	}{
		{"missing title", func(in *PlaceInput) { in.Title = "  " }},
		{"zero guests", func(in *PlaceInput) { in.MaxGuests = 0 }},
		{"negative price", func(in *PlaceInput) { in.Price = -1 }},
		{"price above cap", func(in *PlaceInput) { in.Price = MaxNightlyPrice + 1 }},
		{"too many guests", func(in *PlaceInput) { in.MaxGuests = MaxGuestsPerPlace + 1 }},
		{"check-in hour", func(in *PlaceInput) { in.CheckIn = 24 }},
		{"check-out hour", func(in *PlaceInput) { in.CheckOut = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPlaceInput()
			tt.mutate(&in)
			if _, err := env.places.Create(context.Background(), owner, in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPlaceCreate_AcceptsCaps(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Owner", "owner@x.com")

	in := validPlaceInput()
	in.Price = MaxNightlyPrice
	in.MaxGuests = MaxGuestsPerPlace
	if _, err := env.places.Create(context.Background(), owner, in); err != nil {
		t.Fatalf("Create at caps failed: %v", err)
	}
}

func TestPlaceCreate_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.places.Create(context.Background(), model.Identity{}, validPlaceInput()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPlaceCreate_CompactsLists(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Owner", "owner@x.com")

	in := validPlaceInput()
	in.Perks = []string{" wifi ", "", "pets"}
	in.Photos = nil

	place, err := env.places.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(place.Perks) != 2 || place.Perks[0] != "wifi" {
		t.Errorf("Perks = %v", place.Perks)
	}
	if place.Photos == nil {
		t.Error("Photos should be an empty list, not nil")
	}
}

func TestPlaceLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "Alice", "alice@x.com")
	bob := env.register(t, "Bob", "bob@x.com")

	for _, id := range []model.Identity{alice, alice, bob} {
		if _, err := env.places.Create(ctx, id, validPlaceInput()); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := env.places.ListAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAll = %d, err %v", len(all), err)
	}

	mine, err := env.places.ListByOwner(ctx, alice)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListByOwner = %d, err %v", len(mine), err)
	}
	for _, p := range mine {
		if p.OwnerID != alice.ID {
			t.Errorf("foreign place in owner list: %+v", p)
		}
	}

	if _, err := env.places.ListByOwner(ctx, model.Identity{}); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPlaceGet_NotFound(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.places.Get(context.Background(), "missing"); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("expected ErrPlaceNotFound, got %v", err)
	}
}

func TestPlaceUpdate_NotFoundAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Owner", "owner@x.com")

	if _, err := env.places.Update(ctx, owner, "missing", validPlaceInput()); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("expected ErrPlaceNotFound, got %v", err)
	}

	place, err := env.places.Create(ctx, owner, validPlaceInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	bad := validPlaceInput()
	bad.Title = ""
	if _, err := env.places.Update(ctx, owner, place.ID, bad); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := env.places.Update(ctx, model.Identity{}, place.ID, validPlaceInput()); !errors.Is(err, ErrForbidden) {
		t.Errorf("anonymous Update: expected ErrForbidden, got %v", err)
	}
}

func TestPlaceDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.register(t, "Owner", "owner@x.com")
	other := env.register(t, "Other", "other@x.com")

	place, err := env.places.Create(ctx, owner, validPlaceInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.places.Delete(ctx, other, place.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner Delete: expected ErrForbidden, got %v", err)
	}
	if _, err := env.places.Get(ctx, place.ID); err != nil {
		t.Fatalf("place should survive forbidden delete: %v", err)
	}

	if err := env.places.Delete(ctx, owner, place.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := env.places.Get(ctx, place.ID); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("expected ErrPlaceNotFound after delete, got %v", err)
	}
	if err := env.places.Delete(ctx, owner, place.ID); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("second Delete: expected ErrPlaceNotFound, got %v", err)
	}
}

func TestCompact(t *testing.T) {
	got := compact([]string{" a ", "", "  ", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("compact() = %v", got)
	}
	if got := compact(nil); got == nil || len(got) != 0 {
		t.Errorf("compact(nil) = %#v", got)
	}
}
