package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"
)

func newTestServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(h, 0, time.Second, time.Second, time.Second, logger), ln
}

func TestServe_ShutdownHooksRunInReverse(t *testing.T) {
	srv, ln := newTestServer(t)

	var order []string
	for _, name := range []string{"postgres", "redis"} {
		srv.OnShutdown(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	if len(order) != 2 || order[0] != "redis" || order[1] != "postgres" {
		t.Errorf("shutdown order = %v, want [redis postgres]", order)
	}
}

func TestServe_HookErrorsAreReturned(t *testing.T) {
	srv, ln := newTestServer(t)
	boom := errors.New("close failed")
	srv.OnShutdown("redis", func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := srv.Serve(ctx, ln); !errors.Is(err, boom) {
		t.Errorf("expected hook error, got %v", err)
	}
}
