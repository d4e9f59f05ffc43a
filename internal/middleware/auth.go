package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/metrics"
)

// Authenticator resolves the session presented on a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Session, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger  *slog.Logger
	Guard   Authenticator
	Metrics metrics.Recorder
}

// authCodes maps guard failure reasons to response codes.
var authCodes = map[string]string{
	"missing_credential": "MISSING_CREDENTIAL",
	"revoked":            "TOKEN_REVOKED",
	"expired":            "TOKEN_EXPIRED",
	"invalid_signature":  "INVALID_SIGNATURE",
	"malformed":          "MALFORMED_TOKEN",
	"invalid_claims":     "MALFORMED_TOKEN",
}

// RequireSession returns a middleware that rejects requests without a valid
// session cookie and injects the session into the request context.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	return session(cfg, true)
}

// OptionalSession injects the session when a cookie is present. Requests
// without a cookie pass through unauthenticated; a cookie that fails
// verification is still rejected.
func OptionalSession(cfg SessionConfig) func(http.Handler) http.Handler {
	return session(cfg, false)
}

func session(cfg SessionConfig, required bool) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := cfg.Guard.Authenticate(r)
			if err != nil {
				if !required && errors.Is(err, auth.ErrMissingCredential) {
					next.ServeHTTP(w, r)
					return
				}

				reason := auth.Reason(err)
				recorder.IncAuthFailure(reason)
				logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, reason)
				return
			}

			noteUser(r.Context(), s.Identity.ID)
			ctx := auth.ContextWithSession(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes a 401 Unauthorized response for reason.
func writeAuthError(w http.ResponseWriter, reason string) {
	code, ok := authCodes[reason]
	if !ok {
		code = "MALFORMED_TOKEN"
	}
	message := "Authentication required"
	if reason != "missing_credential" {
		message = "Invalid or expired session"
	}
	writeError(w, http.StatusUnauthorized, code, message)
}

// writeError writes the JSON error envelope used across the API.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
