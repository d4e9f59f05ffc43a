package dto

import (
	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/service"
)

// PlaceRequest represents the body of POST /places and PUT /places.
// ID is only read on update.
type PlaceRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	AddedPhotos []string `json:"addedPhotos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	ExtraInfo   string   `json:"extraInfo"`
	CheckIn     Number   `json:"checkIn"`
	CheckOut    Number   `json:"checkOut"`
	MaxGuests   Number   `json:"maxGuests"`
	Price       Number   `json:"price"`
}

// ToInput converts the request into service input.
func (r *PlaceRequest) ToInput() service.PlaceInput {
	return service.PlaceInput{
		Title:       r.Title,
		Address:     r.Address,
		Photos:      r.AddedPhotos,
		Description: r.Description,
		Perks:       r.Perks,
		ExtraInfo:   r.ExtraInfo,
		CheckIn:     int(r.CheckIn),
		CheckOut:    int(r.CheckOut),
		MaxGuests:   int(r.MaxGuests),
		Price:       int64(r.Price),
	}
}

// PlaceList keeps empty results encoded as [] rather than null.
func PlaceList(places []*model.Place) []*model.Place {
	if places == nil {
		return []*model.Place{}
	}
	return places
}
