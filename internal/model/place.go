package model

import "time"

// Place is a rental listing.
type Place struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"owner"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	Photos      []string  `json:"photos"`
	Description string    `json:"description"`
	Perks       []string  `json:"perks"`
	ExtraInfo   string    `json:"extraInfo"`
	CheckIn     int       `json:"checkIn"`
	CheckOut    int       `json:"checkOut"`
	MaxGuests   int       `json:"maxGuests"`
	Price       int64     `json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Owner returns the id of the user that created the listing.
func (p *Place) Owner() string {
	if p == nil {
		return ""
	}
	return p.OwnerID
}
