package token

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, secret string, clock *fakeClock) *Service {
	t.Helper()
	svc, err := New([]byte(secret), WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

var alice = Claims{UserID: "01HX0000000000000000000000", Email: "a@x.com", Name: "Alice"}

func TestNew_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestService(t, "round-trip-secret", clock)

	tok, err := svc.Issue(alice, time.Hour)
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)

	got, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, alice, got.Claims)
	assert.NotEmpty(t, got.ID)
	assert.WithinDuration(t, clock.Now().Add(time.Minute), got.ExpiresAt, 0)
}

func TestIssue_InvalidInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "secret", newFakeClock())

	tests := []struct {
		name   string
		claims Claims
		ttl    time.Duration
	}{
		{"missing user id", Claims{Email: "a@x.com"}, time.Hour},
		{"zero ttl", alice, 0},
		{"negative ttl", alice, -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Issue(tt.claims, tt.ttl)
			assert.ErrorIs(t, err, ErrInvalidClaims)
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestService(t, "secret", clock)

	tok, err := svc.Issue(alice, 30*time.Second)
	require.NoError(t, err)

	clock.Advance(31 * time.Second)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_ExactlyAtExpiryIsExpired(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestService(t, "secret", clock)

	tok, err := svc.Issue(alice, 30*time.Second)
	require.NoError(t, err)

	clock.Advance(30 * time.Second)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_DifferentSecret(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	issuer := newTestService(t, "right-secret", clock)
	verifier := newTestService(t, "wrong-secret", clock)

	tok, err := issuer.Issue(alice, time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_ForgedExpiredReportsSignature(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	issuer := newTestService(t, "right-secret", clock)
	verifier := newTestService(t, "wrong-secret", clock)

	tok, err := issuer.Issue(alice, time.Second)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "secret", newFakeClock())

	tok, err := svc.Issue(alice, time.Hour)
	require.NoError(t, err)

	other, err := svc.Issue(Claims{UserID: "mallory"}, time.Hour)
	require.NoError(t, err)

	// Splice the second payload onto the first signature.
	a := strings.Split(tok, ".")
	b := strings.Split(other, ".")
	forged := a[0] + "." + b[1] + "." + a[2]

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "secret", newFakeClock())

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, "secret", newFakeClock())

	for _, raw := range []string{"", "not-a-jwt", "not.a.jwt", "a.b"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", raw)
	}
}

func TestRotate(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestService(t, "secret", clock)

	original, err := svc.Issue(alice, time.Hour)
	require.NoError(t, err)

	before, err := svc.Verify(original)
	require.NoError(t, err)

	rotated, after, err := svc.Rotate(original)
	require.NoError(t, err)

	assert.NotEqual(t, original, rotated)
	assert.Equal(t, before.Claims, after.Claims)
	assert.NotEqual(t, before.ID, after.ID)
	assert.WithinDuration(t, clock.Now().Add(DefaultRotationTTL), after.ExpiresAt, 0)

	again, err := svc.Verify(rotated)
	require.NoError(t, err)
	assert.Equal(t, before.Claims, again.Claims)
}

func TestRotate_ShortLived(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc, err := New([]byte("secret"), WithClock(clock.Now), WithRotationTTL(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, svc.RotationTTL())

	original, err := svc.Issue(alice, time.Hour)
	require.NoError(t, err)

	rotated, _, err := svc.Rotate(original)
	require.NoError(t, err)

	clock.Advance(6 * time.Second)

	_, err = svc.Verify(rotated)
	assert.ErrorIs(t, err, ErrExpired)

	// The original is not invalidated by rotation.
	_, err = svc.Verify(original)
	assert.NoError(t, err)
}

func TestRotate_RejectsInvalid(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	svc := newTestService(t, "secret", clock)

	tok, err := svc.Issue(alice, time.Second)
	require.NoError(t, err)
	clock.Advance(2 * time.Second)

	_, _, err = svc.Rotate(tok)
	assert.ErrorIs(t, err, ErrExpired)

	_, _, err = svc.Rotate("garbage")
	assert.ErrorIs(t, err, ErrMalformed)
}
