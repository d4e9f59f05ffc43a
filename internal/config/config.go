// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// MinSecretLength is the shortest accepted JWT signing secret in bytes.
const MinSecretLength = 16

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// ErrSecretTooShort is returned when JWT_SECRET is below MinSecretLength.
var ErrSecretTooShort = errors.New("JWT_SECRET is too short")

// ErrUnknownStorage is returned for an unsupported STORAGE_BACKEND value.
var ErrUnknownStorage = errors.New("unknown storage backend")

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"5000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Cache (Redis). Optional: enables auth rate limiting and the logout denylist.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Session tokens
	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty,unset"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RotationTTL  time.Duration `env:"ROTATION_TTL" envDefault:"30s"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for credential and upload endpoints (per IP)
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"5"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins. Credentials are always allowed.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
	// Multipart upload limit in bytes (default 32MB)
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`

	// Image storage
	StorageBackend    string        `env:"STORAGE_BACKEND" envDefault:"local"`
	UploadDir         string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	ImageFetchTimeout time.Duration `env:"IMAGE_FETCH_TIMEOUT" envDefault:"10s"`

	// S3 / MinIO
	S3Bucket    string `env:"S3_BUCKET" envDefault:"staywell"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT" envDefault:""`
	S3AccessKey string `env:"S3_ACCESS_KEY" envDefault:""`
	S3SecretKey string `env:"S3_SECRET_KEY,unset" envDefault:""`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// RedisEnabled reports whether a Redis URL was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("%w: need at least %d bytes", ErrSecretTooShort, MinSecretLength)
	}
	switch c.StorageBackend {
	case StorageLocal, StorageS3:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.StorageBackend)
	}
	if c.SessionTTL <= 0 || c.RotationTTL <= 0 {
		return errors.New("SESSION_TTL and ROTATION_TTL must be positive")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
