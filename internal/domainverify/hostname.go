package domainverify

import (
	"LinkGate-Backend/internal/domain"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrInvalidHostname is wrapped into domain.ErrValidation by NormalizeHostname.
var ErrInvalidHostname = errors.New("invalid hostname")

// NormalizeHostname lower-cases and validates a hostname supplied by a user.
// Schemes, paths, ports and a trailing dot are stripped.
func NormalizeHostname(raw string) (string, error) {
	host := strings.TrimSpace(strings.ToLower(raw))
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrValidation, ErrInvalidHostname)
		}
		host = u.Host
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")

	if !validHostname(host) {
		return "", fmt.Errorf("%w: %w %q", domain.ErrValidation, ErrInvalidHostname, raw)
	}
	return host, nil
}

func validHostname(host string) bool {
	if len(host) == 0 || len(host) > 253 || net.ParseIP(host) != nil {
		return false
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	// top-level label must not be numeric
	tld := labels[len(labels)-1]
	return strings.Trim(tld, "0123456789") != ""
}

// NewVerificationToken returns a random hex token for TXT verification.
func NewVerificationToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
