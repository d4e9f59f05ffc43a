package model

import "time"

// Booking is a reservation of a place by a user.
type Booking struct {
	ID             string    `json:"_id"`
	PlaceID        string    `json:"-"`
	UserID         string    `json:"user"`
	CheckIn        time.Time `json:"checkIn"`
	CheckOut       time.Time `json:"checkOut"`
	NumberOfGuests int       `json:"numberOfGuests"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Price          int64     `json:"price"`
	CreatedAt      time.Time `json:"createdAt"`

	// Place is populated by listing queries.
	Place *Place `json:"place,omitempty"`
}

// Owner returns the id of the user that made the booking.
func (b *Booking) Owner() string {
	if b == nil {
		return ""
	}
	return b.UserID
}

// Nights returns the number of whole nights between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}
