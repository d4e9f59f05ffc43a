// Package imagefetch downloads listing photos from user-supplied links
// without letting the request reach internal networks.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxBytes caps the size of a downloaded image.
const DefaultMaxBytes = 10 << 20

// Fetch errors.
var (
	ErrNotImage = errors.New("remote resource is not an image")
	ErrTooLarge = errors.New("remote image is too large")
	ErrUpstream = errors.New("remote server returned an error")
)

// Image is a downloaded image.
type Image struct {
	Data        []byte
	ContentType string
}

// Ext returns the file extension for the image's content type.
func (i *Image) Ext() string {
	return ExtensionFor(i.ContentType)
}

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client       *http.Client
	maxBytes     int64
	allowPrivate bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxBytes overrides DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithPrivateNetworks allows loopback and private targets. For tests and
// local development only.
func WithPrivateNetworks() Option {
	return func(f *Fetcher) {
		f.allowPrivate = true
	}
}

// New creates a Fetcher whose downloads time out after timeout.
func New(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(f)
	}
	f.client = NewHTTPClient(timeout, f.allowPrivate)
	return f
}

// Fetch downloads the image at link.
func (f *Fetcher) Fetch(ctx context.Context, link string) (*Image, error) {
	target, err := ValidateURL(link, f.allowPrivate)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")
	req.Header.Set("User-Agent", "Staywell-ImageFetch/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		for _, sentinel := range []error{ErrPrivateIP, ErrTooManyRedirects, ErrLocalhostBlocked, ErrInvalidScheme} {
			if errors.Is(err, sentinel) {
				return nil, sentinel
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	// SVG can carry script and is served from our origin.
	if err != nil || !strings.HasPrefix(mediaType, "image/") || mediaType == "image/svg+xml" {
		return nil, ErrNotImage
	}
	if resp.ContentLength > f.maxBytes {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, ErrTooLarge
	}

	return &Image{Data: data, ContentType: mediaType}, nil
}

// ExtensionFor maps an image media type to a file extension. Unknown image
// types are stored as .jpeg.
func ExtensionFor(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/avif":
		return ".avif"
	default:
		return ".jpeg"
	}
}
