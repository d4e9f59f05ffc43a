package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"plain", "photo01HX.jpeg", true},
		{"dashes", "my-photo_2.png", true},
		{"empty", "", false},
		{"hidden", ".env", false},
		{"parent", "..", false},
		{"traversal", "../etc/passwd", false},
		{"nested", "a/b.jpg", false},
		{"backslash", `a\b.jpg`, false},
		{"space", "a b.jpg", false},
		{"too long", strings.Repeat("a", 256), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.ok && err != nil {
				t.Errorf("ValidateName(%q) = %v, want nil", tt.input, err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) = %v, want ErrInvalidName", tt.input, err)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	if got := ContentTypeFor("a.PNG"); got != "image/png" {
		t.Errorf("ContentTypeFor(a.PNG) = %q", got)
	}
	if got := ContentTypeFor("noext"); got != "application/octet-stream" {
		t.Errorf("ContentTypeFor(noext) = %q", got)
	}
}

func TestLocal_PutGet(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "photo1.png", strings.NewReader("pngdata"), "image/png"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	obj, err := store.Get(ctx, "photo1.png")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer obj.Body.Close()

	data, _ := io.ReadAll(obj.Body)
	if string(data) != "pngdata" {
		t.Errorf("body = %q", data)
	}
	if obj.ContentType != "image/png" || obj.Size != 7 {
		t.Errorf("unexpected object metadata: %q %d", obj.ContentType, obj.Size)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the stored file, found %d entries", len(entries))
	}
}

func TestLocal_Errors(t *testing.T) {
	t.Parallel()

	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, "../secret"); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if err := store.Put(ctx, "../escape.jpg", strings.NewReader("x"), ""); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName on put, got %v", err)
	}
}
