package sitemap

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrURLRequired is returned for a blank root URL.
	ErrURLRequired = errors.New("sitemap URL is required")
	// ErrInvalidURL is returned for a root URL without scheme or host.
	ErrInvalidURL = errors.New("invalid URL format")
)

// ValidateRootURL trims raw and checks that it is an absolute URL with a
// scheme and a host. The resolver itself accepts any string; callers run
// this before invoking it.
func ValidateRootURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrURLRequired
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidURL
	}

	return trimmed, nil
}
