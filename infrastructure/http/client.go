// Package http builds the outbound HTTP client used to fetch sitemaps.
package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10
	DefaultIdleConnTimeout     = 90 * time.Second
	DefaultTLSHandshakeTimeout = 10 * time.Second
	DefaultDialTimeout         = 10 * time.Second

	// DefaultMaxRedirects matches what common sitemap consumers follow
	// before giving up on a redirect chain.
	DefaultMaxRedirects = 10
)

// ErrTooManyRedirects is returned when a redirect chain exceeds MaxRedirects.
var ErrTooManyRedirects = errors.New("too many redirects")

// ClientConfig configures an outbound HTTP client. Zero values fall back to
// the package defaults.
type ClientConfig struct {
	// Timeout bounds a whole request including reading the body.
	Timeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	DialTimeout         time.Duration

	// MaxRedirects caps the redirects followed per request. Negative
	// disables redirect following.
	MaxRedirects int

	// Transport replaces the pooled transport. Tests use it to inject a
	// fake RoundTripper.
	Transport http.RoundTripper
}

func (c *ClientConfig) setDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConnsPerHost == 0 {
		c.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = DefaultIdleConnTimeout
	}
	if c.TLSHandshakeTimeout == 0 {
		c.TLSHandshakeTimeout = DefaultTLSHandshakeTimeout
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.MaxRedirects == 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
}

// NewClient creates an HTTP client. If cfg is nil, default values are used.
func NewClient(cfg *ClientConfig) *http.Client {
	var c ClientConfig
	if cfg != nil {
		c = *cfg
	}
	c.setDefaults()

	transport := c.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   c.DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        c.MaxIdleConns,
			MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
			IdleConnTimeout:     c.IdleConnTimeout,
			TLSHandshakeTimeout: c.TLSHandshakeTimeout,
		}
	}

	maxRedirects := c.MaxRedirects
	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if maxRedirects < 0 {
				return http.ErrUseLastResponse
			}
			if len(via) > maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}
}

// NewDefaultClient creates an HTTP client with all default settings.
func NewDefaultClient() *http.Client {
	return NewClient(nil)
}
