package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/model"
	"github.com/staywell/staywell/internal/repository"
	"github.com/staywell/staywell/internal/token"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// UserStore is the credential store.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// TokenIssuer mints and rotates session tokens.
type TokenIssuer interface {
	Issue(claims token.Claims, ttl time.Duration) (string, error)
	Verify(raw string) (*token.Verified, error)
	Rotate(raw string) (string, *token.Verified, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// Revoker denylists a token id until it would have expired.
type Revoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// UserService handles registration and the session lifecycle.
type UserService struct {
	store      UserStore
	tokens     TokenIssuer
	hasher     PasswordHasher
	revoker    Revoker
	sessionTTL time.Duration
	metrics    metrics.Recorder
}

// NewUserService creates a new UserService. revoker may be nil, in which
// case logout only clears the client's cookie.
func NewUserService(store UserStore, tokens TokenIssuer, hasher PasswordHasher, revoker Revoker, sessionTTL time.Duration, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:      store,
		tokens:     tokens,
		hasher:     hasher,
		revoker:    revoker,
		sessionTTL: sessionTTL,
		metrics:    recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is a freshly issued token and the identity it carries.
type Session struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	email := repository.NormalizeEmail(input.Email)

	if name == "" {
		return nil, invalid("name is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(input.Password) < MinPasswordLength {
		return nil, invalid("password must be at least %d characters", MinPasswordLength)
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login checks credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin(metrics.LoginUnknownUser)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginWrongPassword)
		return nil, ErrWrongPassword
	}

	raw, err := s.tokens.Issue(token.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	// The cookie expires with the token's own exp claim.
	issued, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to verify issued token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)

	return &Session{
		User:      user,
		Token:     raw,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// Profile loads the account behind identity.
func (s *UserService) Profile(ctx context.Context, identity model.Identity) (*model.User, error) {
	if identity.IsZero() {
		return nil, ErrUnauthenticated
	}

	user, err := s.store.GetUserByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Refresh rotates raw into a short-lived token for the same identity.
// Token errors are returned unchanged.
func (s *UserService) Refresh(_ context.Context, raw string) (*Session, error) {
	next, verified, err := s.tokens.Rotate(raw)
	if err != nil {
		return nil, err
	}

	s.metrics.IncTokenRotated()

	return &Session{
		User: &model.User{
			ID:    verified.UserID,
			Name:  verified.Name,
			Email: verified.Email,
		},
		Token:     next,
		ExpiresAt: verified.ExpiresAt,
	}, nil
}

// Logout revokes tokenID until expiresAt when a revoker is configured.
func (s *UserService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil || tokenID == "" {
		return nil
	}
	if err := s.revoker.RevokeToken(ctx, tokenID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevocationEnabled reports whether Logout invalidates tokens server-side.
func (s *UserService) RevocationEnabled() bool {
	return s.revoker != nil
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return invalid("email is not valid")
	}
	return nil
}
