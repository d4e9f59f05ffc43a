// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity returns the identity a session token carries for u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Identity is the authenticated principal extracted from a verified token.
type Identity struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool {
	return i.ID == ""
}
