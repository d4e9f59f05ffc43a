package imagefetch

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned when URL parsing fails.
	ErrInvalidURL = errors.New("invalid URL format")
	// ErrInvalidScheme is returned for schemes other than http and https.
	ErrInvalidScheme = errors.New("only http and https allowed")
	// ErrEmptyHost is returned when URL has no host.
	ErrEmptyHost = errors.New("URL must have a host")
	// ErrLocalhostBlocked is returned when localhost is used.
	ErrLocalhostBlocked = errors.New("localhost not allowed")
	// ErrPrivateIP is returned when the target is a private address.
	ErrPrivateIP = errors.New("private IP addresses not allowed")
)

// BlockedCIDRs contains private/internal IP ranges.
var BlockedCIDRs = []string{
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"100.64.0.0/10", // Carrier-grade NAT
	"127.0.0.0/8",
	"169.254.0.0/16", // Link-local, cloud metadata
	"0.0.0.0/8",
	"::1/128",
	"::/128",
	"fc00::/7",
	"fe80::/10",
}

var blockedNetworks []*net.IPNet

func init() {
	for _, cidr := range BlockedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err == nil {
			blockedNetworks = append(blockedNetworks, network)
		}
	}
}

// ValidateURL checks that link is an absolute http(s) URL whose host is not
// obviously internal. Hostnames are checked again after DNS resolution by the
// client's dialer.
func ValidateURL(link string, allowPrivate bool) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, ErrInvalidURL
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrInvalidScheme
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, ErrEmptyHost
	}
	if allowPrivate {
		return parsed, nil
	}

	if isLocalhostHostname(host) {
		return nil, ErrLocalhostBlocked
	}
	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return nil, ErrPrivateIP
	}

	return parsed, nil
}

// isLocalhostHostname checks if hostname is localhost variant.
func isLocalhostHostname(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") ||
		strings.HasSuffix(host, ".internal")
}

// isBlockedIP checks if IP is in any blocked CIDR range.
func isBlockedIP(ip net.IP) bool {
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// ExtractHost extracts host from URL for safe logging.
func ExtractHost(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return "(invalid)"
	}
	return parsed.Host
}
