package handler

import (
	"net/http"
	"testing"
)

func placeBody(id, title string) map[string]any {
	return map[string]any{
		"id":          id,
		"title":       title,
		"address":     "5 Main St",
		"addedPhotos": []string{"photo1.jpeg"},
		"description": "Bright loft",
		"perks":       []string{"wifi", "parking"},
		"extraInfo":   "No pets",
		"checkIn":     "14",
		"checkOut":    11,
		"maxGuests":   "3",
		"price":       120,
	}
}

func TestPlaces_OwnershipFlow(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.login(t, "Alice", "a@x.com")
	_, bob := s.login(t, "Bob", "b@x.com")

	rec := s.do(t, http.MethodPost, "/places", placeBody("", "Loft"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/places", placeBody("", "Loft"), alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decode(t, rec, &created)
	placeID, _ := created["_id"].(string)
	if placeID == "" || created["owner"] != aliceID {
		t.Fatalf("unexpected place: %v", created)
	}
	if created["checkIn"] != float64(14) || created["maxGuests"] != float64(3) {
		t.Errorf("numeric strings not decoded: %v", created)
	}
	if photos, _ := created["photos"].([]any); len(photos) != 1 {
		t.Errorf("photos = %v", created["photos"])
	}

	// Bob cannot touch Alice's listing.
	rec = s.do(t, http.MethodPut, "/places", placeBody(placeID, "Hijacked"), bob)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner update: expected 403, got %d", rec.Code)
	}
	if got := errorCode(t, rec); got != "FORBIDDEN" {
		t.Errorf("unexpected code: %s", got)
	}
	rec = s.do(t, http.MethodDelete, "/places/"+placeID, nil, bob)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: expected 403, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/places/"+placeID, nil)
	var unchanged map[string]any
	decode(t, rec, &unchanged)
	if unchanged["title"] != "Loft" {
		t.Errorf("listing changed by non-owner: %v", unchanged["title"])
	}

	rec = s.do(t, http.MethodPut, "/places", placeBody(placeID, "Renovated loft"), alice)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated map[string]any
	decode(t, rec, &updated)
	if updated["title"] != "Renovated loft" {
		t.Errorf("update not applied: %v", updated)
	}

	rec = s.do(t, http.MethodGet, "/user-places", nil, bob)
	var bobs []map[string]any
	decode(t, rec, &bobs)
	if len(bobs) != 0 {
		t.Errorf("bob should own nothing, got %d", len(bobs))
	}

	rec = s.do(t, http.MethodGet, "/places", nil)
	var all []map[string]any
	decode(t, rec, &all)
	if len(all) != 1 {
		t.Errorf("expected 1 public listing, got %d", len(all))
	}

	rec = s.do(t, http.MethodDelete, "/places/"+placeID, nil, alice)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: expected 204, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/places/"+placeID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted listing: expected 404, got %d", rec.Code)
	}
	if got := errorCode(t, rec); got != "PLACE_NOT_FOUND" {
		t.Errorf("unexpected code: %s", got)
	}
}

func TestPlaces_Validation(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.login(t, "Alice", "a@x.com")

	body := placeBody("", "")
	rec := s.do(t, http.MethodPost, "/places", body, alice)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing title: expected 422, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPut, "/places", placeBody("", "No id"), alice)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing id: expected 422, got %d", rec.Code)
	}

	body = placeBody("", "Loft")
	body["maxGuests"] = "many"
	rec = s.do(t, http.MethodPost, "/places", body, alice)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric guests: expected 400, got %d", rec.Code)
	}
}

func TestPlaces_EmptyListIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/places", nil)
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty array, got %q", got)
	}
}
