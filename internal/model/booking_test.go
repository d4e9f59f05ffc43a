package model

import (
	"testing"
	"time"
)

func TestNights(t *testing.T) {
	t.Parallel()

	day := func(y int, m time.Month, d, h int) time.Time {
		return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"same day", day(2024, 6, 1, 14), day(2024, 6, 1, 18), 0},
		{"one night", day(2024, 6, 1, 14), day(2024, 6, 2, 11), 1},
		{"across month", day(2024, 6, 29, 0), day(2024, 7, 3, 0), 4},
		{"reversed", day(2024, 6, 5, 0), day(2024, 6, 3, 0), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nights(tt.in, tt.out); got != tt.expected {
				t.Errorf("Nights() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestUser_Identity(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Name: "Alice", Email: "a@x.com", PasswordHash: "secret"}
	id := u.Identity()

	if id.ID != "u1" || id.Email != "a@x.com" || id.Name != "Alice" {
		t.Errorf("Identity() = %+v", id)
	}
	if id.IsZero() {
		t.Error("expected non-zero identity")
	}
	if !(Identity{}).IsZero() {
		t.Error("expected zero identity")
	}
}
