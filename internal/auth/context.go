package auth

import (
	"context"

	"github.com/staywell/staywell/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession stores an authenticated session in ctx.
func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session stored by the auth middleware,
// or nil when the request is unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return s
}

// IdentityFromContext returns the caller's identity, or the zero Identity.
func IdentityFromContext(ctx context.Context) model.Identity {
	s := SessionFromContext(ctx)
	if s == nil {
		return model.Identity{}
	}
	return s.Identity
}
