package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const clientOrigin = "http://localhost:3000"

func corsHandler(origins ...string) http.Handler {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = origins
	return CORS(cfg)(okHandler)
}

func corsRequest(method, origin string, preflight bool) *http.Request {
	req := httptest.NewRequest(method, "/places", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	return req
}

func TestCORS_Origins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"client origin", []string{clientOrigin}, clientOrigin, true},
		{"trailing slash in config", []string{clientOrigin + "/"}, clientOrigin, true},
		{"case insensitive", []string{"HTTP://LOCALHOST:3000"}, clientOrigin, true},
		{"other port", []string{clientOrigin}, "http://localhost:5173", false},
		{"nothing configured", nil, clientOrigin, false},
		{"subdomain wildcard", []string{"*.staywell.app"}, "https://www.staywell.app", true},
		{"subdomain wildcard with port", []string{"*.staywell.app"}, "http://dev.staywell.app:8080", true},
		{"wildcard needs a subdomain", []string{"*.staywell.app"}, "https://staywell.app", false},
		{"lookalike domain", []string{"*.staywell.app"}, "https://notstaywell.app", false},
		{"star ignored with credentials", []string{"*"}, "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			corsHandler(tt.allowed...).ServeHTTP(rec, corsRequest(http.MethodGet, tt.origin, false))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.want && got != tt.origin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.origin)
			}
			if !tt.want && got != "" {
				t.Errorf("untrusted origin got Access-Control-Allow-Origin %q", got)
			}
			if vary := rec.Header().Values("Vary"); len(vary) == 0 || vary[0] != "Origin" {
				t.Errorf("Vary = %v, want Origin", vary)
			}
		})
	}
}

func TestCORS_StarWithoutCredentials(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	cfg.AllowCredentials = false

	rec := httptest.NewRecorder()
	CORS(cfg)(okHandler).ServeHTTP(rec, corsRequest(http.MethodGet, "https://any.example", false))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://any.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want empty", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	rec := httptest.NewRecorder()
	corsHandler(clientOrigin).ServeHTTP(rec, corsRequest(http.MethodOptions, clientOrigin, true))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	h := rec.Header()
	if h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("session cookie would not be sent: credentials not allowed")
	}
	if got := h.Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := h.Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Content-Type") {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
	if got := h.Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q, want 86400", got)
	}
	if h.Get("Access-Control-Expose-Headers") != "" {
		t.Error("expose headers belong on actual responses")
	}
}

func TestCORS_PreflightUntrusted(t *testing.T) {
	rec := httptest.NewRecorder()
	corsHandler(clientOrigin).ServeHTTP(rec, corsRequest(http.MethodOptions, "https://evil.example", true))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestCORS_PlainOptionsPassesThrough(t *testing.T) {
	var reached bool
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{clientOrigin}
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), corsRequest(http.MethodOptions, clientOrigin, false))
	if !reached {
		t.Error("OPTIONS without Access-Control-Request-Method was treated as preflight")
	}
}

func TestCORS_ExposesRateLimitHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	corsHandler(clientOrigin).ServeHTTP(rec, corsRequest(http.MethodPost, clientOrigin, false))

	exposed := rec.Header().Get("Access-Control-Expose-Headers")
	for _, name := range []string{RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"} {
		if !strings.Contains(exposed, name) {
			t.Errorf("Access-Control-Expose-Headers %q missing %s", exposed, name)
		}
	}
}

func TestCORS_SameOriginUntouched(t *testing.T) {
	rec := httptest.NewRecorder()
	corsHandler(clientOrigin).ServeHTTP(rec, corsRequest(http.MethodGet, "", false))

	if len(rec.Header().Values("Vary")) != 0 || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("same-origin request got CORS headers: %v", rec.Header())
	}
}
