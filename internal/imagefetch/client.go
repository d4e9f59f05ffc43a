package imagefetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second
	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects = 3
)

// ErrTooManyRedirects is returned after MaxRedirects hops.
var ErrTooManyRedirects = errors.New("too many redirects")

// NewHTTPClient creates a client for downloading remote images. Every
// connection is checked against BlockedCIDRs after DNS resolution, and every
// redirect target is validated like the original link.
func NewHTTPClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   DialTimeout,
		KeepAlive: 30 * time.Second,
	}
	if !allowPrivate {
		dialer.Control = blockPrivate
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 nil,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > MaxRedirects {
				return ErrTooManyRedirects
			}
			if _, err := ValidateURL(req.URL.String(), allowPrivate); err != nil {
				return err
			}
			return nil
		},
	}
}

// blockPrivate runs after resolution, on the address actually dialled.
func blockPrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("parse dial address: %w", err)
	}
	ip := net.ParseIP(host)
	if ip == nil || isBlockedIP(ip) {
		return ErrPrivateIP
	}
	return nil
}
