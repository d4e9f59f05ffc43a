// Package main is the entrypoint for the Staywell API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/cache"
	"github.com/staywell/staywell/internal/config"
	"github.com/staywell/staywell/internal/handler"
	"github.com/staywell/staywell/internal/imagefetch"
	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/middleware"
	"github.com/staywell/staywell/internal/repository"
	"github.com/staywell/staywell/internal/server"
	"github.com/staywell/staywell/internal/service"
	"github.com/staywell/staywell/internal/storage"
	"github.com/staywell/staywell/internal/token"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", sanitizeError(err, os.Getenv("DATABASE_URL"), os.Getenv("REDIS_URL")))
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
		repo.Close()
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Redis is optional. Interfaces stay nil when it is not configured.
	var (
		cacheClient *cache.Cache
		revoker     service.Revoker
		revocations auth.RevocationChecker
		limiter     middleware.IPRateLimiter
		cacheHealth handler.HealthChecker
	)
	if cfg.RedisEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		revoker, revocations, limiter, cacheHealth = cacheClient, cacheClient, cacheClient, cacheClient
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set: logout revocation and rate limiting are disabled")
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize image storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("image storage ready", "backend", cfg.StorageBackend)

	// Initialize services
	tokens, err := token.New([]byte(cfg.JWTSecret), token.WithRotationTTL(cfg.RotationTTL))
	if err != nil {
		logger.Error("failed to initialize token service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	guard := auth.NewGuard(tokens, revocations, auth.CookieName, auth.WithLogger(logger))
	metricsRecorder := metrics.NewInMemory()

	userService := service.NewUserService(repo, tokens, auth.NewHasher(auth.DefaultParams), revoker, cfg.SessionTTL, metricsRecorder)
	placeService := service.NewPlaceService(repo, metricsRecorder)
	bookingService := service.NewBookingService(repo, metricsRecorder)
	uploadService := service.NewUploadService(images, imagefetch.New(cfg.ImageFetchTimeout), metricsRecorder)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Setup router
	r := handler.NewRouter(handler.RouterConfig{
		Logger:   logger,
		Guard:    guard,
		Metrics:  metricsRecorder,
		Sessions: handler.NewSessionHandler(userService, guard, handler.CookieConfig{Secure: cfg.CookieSecure}, logger),
		Places:   handler.NewPlaceHandler(placeService, logger),
		Bookings: handler.NewBookingHandler(bookingService, logger),
		Uploads:  handler.NewUploadHandler(uploadService, logger),
		Health:   handler.NewHealthHandler(repo, cacheHealth),
		Exporter: handler.NewMetricsHandler(metricsRecorder),
		RateLimits: handler.RateLimits{
			Limiter: limiter,
			Enabled: cfg.RateLimitAuthEnabled,
			RPS:     cfg.RateLimitAuthRPS,
			Burst:   cfg.RateLimitAuthBurst,
		},
		Security:      middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:          corsCfg,
		MaxBodySize:   cfg.MaxRequestBodySize,
		MaxUploadSize: cfg.MaxUploadSize,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Closed in reverse order after the HTTP server stops.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"redis", cfg.RedisEnabled(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newImageStore builds the configured image backend.
func newImageStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case config.StorageLocal:
		return storage.NewLocal(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownStorage, cfg.StorageBackend)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
