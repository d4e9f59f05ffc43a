package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/token"
)

// CookieName is the cookie carrying the session token.
const CookieName = "token"

// Guard errors. Verification failures are reported with the token package
// errors unchanged.
var (
	ErrMissingCredential = errors.New("no session token presented")
	ErrRevoked           = errors.New("session token has been revoked")
	ErrForbidden         = errors.New("caller does not own the resource")
)

// Session is an authenticated request's view of its token.
type Session struct {
	Identity  model.Identity
	TokenID   string
	ExpiresAt time.Time
	Raw       string
}

// Verifier verifies raw session tokens.
type Verifier interface {
	Verify(raw string) (*token.Verified, error)
}

// RevocationChecker reports whether a token id was revoked before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Owned is any resource with an owning user.
type Owned interface {
	Owner() string
}

// Guard authenticates requests and answers ownership questions.
// It holds no mutable state.
type Guard struct {
	verifier    Verifier
	revocations RevocationChecker
	cookieName  string
	logger      *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLogger sets the logger used for revocation lookup failures.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = l
	}
}

// NewGuard creates a Guard. revocations may be nil, in which case tokens are
// valid until they expire. An empty cookieName selects CookieName.
func NewGuard(verifier Verifier, revocations RevocationChecker, cookieName string, opts ...GuardOption) *Guard {
	if cookieName == "" {
		cookieName = CookieName
	}
	g := &Guard{
		verifier:    verifier,
		revocations: revocations,
		cookieName:  cookieName,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CookieName returns the name of the session cookie the guard reads.
func (g *Guard) CookieName() string {
	return g.cookieName
}

// Authenticate extracts and verifies the session token on r.
func (g *Guard) Authenticate(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrMissingCredential
	}

	verified, err := g.verifier.Verify(cookie.Value)
	if err != nil {
		return nil, err
	}

	if g.revocations != nil && verified.ID != "" {
		revoked, err := g.revocations.IsRevoked(r.Context(), verified.ID)
		switch {
		case err != nil:
			g.logger.Warn("revocation lookup failed",
				"request_id", r.Header.Get("X-Request-Id"),
				"error", err,
			)
		case revoked:
			return nil, ErrRevoked
		}
	}

	return &Session{
		Identity: model.Identity{
			ID:    verified.UserID,
			Email: verified.Email,
			Name:  verified.Name,
		},
		TokenID:   verified.ID,
		ExpiresAt: verified.ExpiresAt,
		Raw:       cookie.Value,
	}, nil
}

// AuthorizeOwner reports whether identity owns resource.
func AuthorizeOwner(identity model.Identity, resource Owned) bool {
	if identity.IsZero() || resource == nil {
		return false
	}
	return resource.Owner() == identity.ID
}

// RequireOwner returns ErrForbidden unless identity owns resource.
func RequireOwner(identity model.Identity, resource Owned) error {
	if !AuthorizeOwner(identity, resource) {
		return ErrForbidden
	}
	return nil
}

// Reason returns a short label for an authentication failure, used in logs
// and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, token.ErrExpired):
		return "expired"
	case errors.Is(err, token.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, token.ErrMalformed):
		return "malformed"
	default:
		return "invalid_claims"
	}
}
