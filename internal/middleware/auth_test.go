package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/metrics"
	"github.com/staywell/staywell/internal/token"
)

const testSecret = "middleware-test-secret"

func newSessionConfig(t *testing.T) (SessionConfig, *token.Service, *metrics.InMemoryRecorder) {
	t.Helper()
	tokens, err := token.New([]byte(testSecret))
	if err != nil {
		t.Fatalf("token.New failed: %v", err)
	}
	rec := metrics.NewInMemory()
	return SessionConfig{
		Guard:   auth.NewGuard(tokens, nil, ""),
		Metrics: rec,
	}, tokens, rec
}

// identityEcho writes the caller's id, or "anonymous".
var identityEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context()).ID
	if id == "" {
		id = "anonymous"
	}
	_, _ = w.Write([]byte(id))
})

func requestWithToken(raw string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/user-places", nil)
	if raw != "" {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: raw})
	}
	return req
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body["code"]
}

func TestRequireSession_Valid(t *testing.T) {
	cfg, tokens, _ := newSessionConfig(t)
	raw, err := tokens.Issue(token.Claims{UserID: "u1", Email: "a@x.com", Name: "A"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	RequireSession(cfg)(identityEcho).ServeHTTP(rec, requestWithToken(raw))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "u1" {
		t.Errorf("identity = %q, want u1", rec.Body.String())
	}
}

func TestRequireSession_Rejections(t *testing.T) {
	cfg, _, recorder := newSessionConfig(t)

	past, err := token.New([]byte(testSecret), token.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	if err != nil {
		t.Fatalf("token.New failed: %v", err)
	}
	expired, _ := past.Issue(token.Claims{UserID: "u1"}, time.Hour)

	other, _ := token.New([]byte("another-secret-entirely"))
	forged, _ := other.Issue(token.Claims{UserID: "u1"}, time.Hour)

	tests := []struct {
		name     string
		raw      string
		wantCode string
	}{
		{"missing cookie", "", "MISSING_CREDENTIAL"},
		{"expired", expired, "TOKEN_EXPIRED"},
		{"wrong secret", forged, "INVALID_SIGNATURE"},
		{"garbage", "not-a-token", "MALFORMED_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireSession(cfg)(identityEcho).ServeHTTP(rec, requestWithToken(tt.raw))

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if got := decodeErrorCode(t, rec); got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}

	failures := recorder.Snapshot().AuthFailures
	if failures["missing_credential"] != 1 || failures["expired"] != 1 || failures["invalid_signature"] != 1 {
		t.Errorf("AuthFailures = %v", failures)
	}
}

func TestOptionalSession(t *testing.T) {
	cfg, tokens, recorder := newSessionConfig(t)
	raw, _ := tokens.Issue(token.Claims{UserID: "u2"}, time.Hour)

	t.Run("no cookie passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OptionalSession(cfg)(identityEcho).ServeHTTP(rec, requestWithToken(""))

		if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
			t.Errorf("got %d %q", rec.Code, rec.Body.String())
		}
		if len(recorder.Snapshot().AuthFailures) != 0 {
			t.Error("missing cookie should not count as a failure")
		}
	})

	t.Run("valid cookie attaches session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OptionalSession(cfg)(identityEcho).ServeHTTP(rec, requestWithToken(raw))

		if rec.Body.String() != "u2" {
			t.Errorf("identity = %q, want u2", rec.Body.String())
		}
	})

	t.Run("bad cookie is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OptionalSession(cfg)(identityEcho).ServeHTTP(rec, requestWithToken("bad"))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestWriteAuthError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeAuthError(rec, "revoked")

	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	if got := decodeErrorCode(t, rec); got != "TOKEN_REVOKED" {
		t.Errorf("code = %q, want TOKEN_REVOKED", got)
	}
}
