package dto

import (
	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/service"
)

// BookingRequest represents the body of POST /bookings. A client-supplied
// price is accepted for compatibility and ignored.
type BookingRequest struct {
	Place          string `json:"place"`
	CheckIn        Date   `json:"checkIn"`
	CheckOut       Date   `json:"checkOut"`
	NumberOfGuests Number `json:"numberOfGuests"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Price          Number `json:"price,omitempty"`
}

// ToInput converts the request into service input.
func (r *BookingRequest) ToInput() service.BookingInput {
	return service.BookingInput{
		PlaceID:        r.Place,
		CheckIn:        r.CheckIn.Time,
		CheckOut:       r.CheckOut.Time,
		NumberOfGuests: int(r.NumberOfGuests),
		Name:           r.Name,
		Phone:          r.Phone,
	}
}

// BookingList keeps empty results encoded as [] rather than null.
func BookingList(bookings []*model.Booking) []*model.Booking {
	if bookings == nil {
		return []*model.Booking{}
	}
	return bookings
}
