// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/staywell/staywell/internal/auth"
)

// Service errors.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmailExists     = errors.New("email is already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrImageNotFound   = errors.New("image not found")
	ErrImageFetch      = errors.New("could not fetch image")
	ErrUnauthenticated = auth.ErrMissingCredential
	ErrForbidden       = auth.ErrForbidden
)

// invalid wraps ErrInvalidInput with a field-level message.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func newID() string {
	return ulid.Make().String()
}
