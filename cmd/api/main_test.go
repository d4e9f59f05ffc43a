package main

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://app:s3cret@db:5432/staywell", "postgres://app@db:5432/staywell"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"postgres://db:5432/staywell", "postgres://db:5432/staywell"},
	}

	for _, tt := range tests {
		if got := redactURL(tt.in); got != tt.want {
			t.Errorf("redactURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://app:s3cret@db:5432/staywell"
	err := errors.New("dial " + dsn + " failed: password=s3cret")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("secret leaked: %s", got)
	}
	if sanitizeError(nil) != "" {
		t.Error("nil error should sanitize to empty string")
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug") != slog.LevelDebug || parseLogLevel("bogus") != slog.LevelInfo {
		t.Error("unexpected log level mapping")
	}
}
