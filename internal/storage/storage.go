// Package storage persists uploaded listing photos.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Storage errors.
var (
	ErrNotFound    = errors.New("image not found")
	ErrInvalidName = errors.New("invalid image name")
)

// Object is a stored image opened for reading. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store saves and loads images by flat name.
type Store interface {
	Put(ctx context.Context, name string, body io.Reader, contentType string) error
	Get(ctx context.Context, name string) (*Object, error)
}

// Presigner is implemented by stores that can hand out time-limited direct
// download links.
type Presigner interface {
	PresignGet(ctx context.Context, name string) (string, error)
}

// ValidateName rejects names that are empty, hidden, or carry path elements.
func ValidateName(name string) error {
	if name == "" || len(name) > 255 || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return ErrInvalidName
		}
	}
	return nil
}

// ContentTypeFor guesses a content type from the name's extension.
func ContentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
