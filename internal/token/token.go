// Package token issues, verifies and rotates signed session tokens.
//
// Tokens are HS256 JWTs. The server keeps no session state: a token is valid
// when its signature matches the configured secret and the current time is
// strictly before its expiry. Expiry has one-second precision, and a token
// checked exactly at its expiry instant is expired.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// DefaultRotationTTL is the lifetime of a token produced by Rotate.
const DefaultRotationTTL = 30 * time.Second

// Verification and issuance errors.
var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token is expired")
	ErrInvalidClaims    = errors.New("token claims are invalid")
	ErrEmptySecret      = errors.New("signing secret is empty")
)

// Claims is the identity carried by a session token.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// Verified is a successfully verified token.
type Verified struct {
	Claims
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// sessionClaims is the JWT body. The user id travels as "sub".
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Service mints and verifies tokens with a single shared secret.
// It is safe for concurrent use.
type Service struct {
	secret      []byte
	rotationTTL time.Duration
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRotationTTL overrides the lifetime of rotated tokens.
func WithRotationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.rotationTTL = ttl
		}
	}
}

// New creates a Service signing with secret.
func New(secret []byte, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	s := &Service{
		secret:      append([]byte(nil), secret...),
		rotationTTL: DefaultRotationTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RotationTTL returns the lifetime applied by Rotate.
func (s *Service) RotationTTL() time.Duration {
	return s.rotationTTL
}

// Issue signs a token for claims that expires after ttl.
func (s *Service) Issue(claims Claims, ttl time.Duration) (string, error) {
	if claims.UserID == "" || ttl <= 0 {
		return "", ErrInvalidClaims
	}

	now := s.now()
	body := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			ID:        ulid.Make().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: claims.Email,
		Name:  claims.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, body).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// The signature is checked first, so a forged expired token reports
// ErrInvalidSignature.
func (s *Service) Verify(raw string) (*Verified, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	body := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, body, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid || body.Subject == "" {
		return nil, ErrInvalidClaims
	}

	v := &Verified{
		Claims: Claims{
			UserID: body.Subject,
			Email:  body.Email,
			Name:   body.Name,
		},
		ID:        body.ID,
		ExpiresAt: body.ExpiresAt.Time,
	}
	if body.IssuedAt != nil {
		v.IssuedAt = body.IssuedAt.Time
	}
	return v, nil
}

// Rotate verifies raw and issues a replacement for the same identity that
// expires after the rotation TTL. The old token stays valid until its own
// expiry.
func (s *Service) Rotate(raw string) (string, *Verified, error) {
	current, err := s.Verify(raw)
	if err != nil {
		return "", nil, err
	}

	next, err := s.Issue(current.Claims, s.rotationTTL)
	if err != nil {
		return "", nil, err
	}

	rotated, err := s.Verify(next)
	if err != nil {
		return "", nil, fmt.Errorf("verify rotated token: %w", err)
	}
	return next, rotated, nil
}

func (s *Service) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return s.secret, nil
}

// classify maps jwt parse errors onto the package error kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}
}
