package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/staywell/staywell/internal/imagefetch"
	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/storage"
)

// MaxUploadFiles is the most files accepted by one upload request.
const MaxUploadFiles = 100

// allowedExtensions are the file extensions accepted for direct uploads.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

// ImageFetcher downloads a remote image.
type ImageFetcher interface {
	Fetch(ctx context.Context, link string) (*imagefetch.Image, error)
}

// UploadService stores listing photos.
type UploadService struct {
	store   storage.Store
	fetcher ImageFetcher
	metrics metrics.Recorder
}

// NewUploadService creates a new UploadService.
func NewUploadService(store storage.Store, fetcher ImageFetcher, recorder metrics.Recorder) *UploadService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UploadService{store: store, fetcher: fetcher, metrics: recorder}
}

// UploadByLink downloads link and stores it under a fresh name, which it
// returns.
func (s *UploadService) UploadByLink(ctx context.Context, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", invalid("link is required")
	}

	img, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		return "", classifyFetchError(err)
	}

	name := newImageName(img.Ext())
	if err := s.store.Put(ctx, name, bytes.NewReader(img.Data), img.ContentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	s.metrics.IncImageStored(metrics.ImageFromLink)

	return name, nil
}

// UploadFiles stores every file and returns the stored names in order. The
// original extension is kept.
func (s *UploadService) UploadFiles(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, invalid("no files uploaded")
	}
	if len(files) > MaxUploadFiles {
		return nil, invalid("at most %d files per upload", MaxUploadFiles)
	}

	for _, fh := range files {
		if !allowedExtensions[extensionOf(fh.Filename)] {
			return nil, invalid("%q is not a supported image type", filepath.Base(fh.Filename))
		}
	}

	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := s.storeFile(ctx, fh)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

func (s *UploadService) storeFile(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	name := newImageName(extensionOf(fh.Filename))
	if err := s.store.Put(ctx, name, f, storage.ContentTypeFor(name)); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	s.metrics.IncImageStored(metrics.ImageFromUpload)

	return name, nil
}

// Open returns a stored image.
func (s *UploadService) Open(ctx context.Context, name string) (*storage.Object, error) {
	obj, err := s.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return obj, nil
}

// PresignURL returns a direct download link when the store supports one.
func (s *UploadService) PresignURL(ctx context.Context, name string) (string, bool, error) {
	p, ok := s.store.(storage.Presigner)
	if !ok {
		return "", false, nil
	}
	if err := storage.ValidateName(name); err != nil {
		return "", true, ErrImageNotFound
	}
	link, err := p.PresignGet(ctx, name)
	if err != nil {
		return "", true, fmt.Errorf("failed to presign image: %w", err)
	}
	return link, true, nil
}

func classifyFetchError(err error) error {
	switch {
	case errors.Is(err, imagefetch.ErrUpstream),
		errors.Is(err, imagefetch.ErrTooManyRedirects):
		return fmt.Errorf("%w: %v", ErrImageFetch, err)
	case errors.Is(err, imagefetch.ErrNotImage),
		errors.Is(err, imagefetch.ErrTooLarge),
		errors.Is(err, imagefetch.ErrInvalidURL),
		errors.Is(err, imagefetch.ErrInvalidScheme),
		errors.Is(err, imagefetch.ErrEmptyHost),
		errors.Is(err, imagefetch.ErrLocalhostBlocked),
		errors.Is(err, imagefetch.ErrPrivateIP):
		return invalid("%v", err)
	default:
		return fmt.Errorf("failed to fetch image: %w", err)
	}
}

func newImageName(ext string) string {
	return "photo" + newID() + ext
}

func extensionOf(filename string) string {
	return strings.ToLower(filepath.Ext(filepath.Base(filename)))
}
