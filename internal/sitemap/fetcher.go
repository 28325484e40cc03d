package sitemap

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	// DefaultUserAgent is sent with every fetch; several CDNs reject
	// sitemap requests from non-browser agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// DefaultMaxBodyBytes matches the 50MiB uncompressed ceiling of the
	// sitemaps.org protocol.
	DefaultMaxBodyBytes int64 = 50 << 20

	acceptHeader = "application/xml, text/xml, */*"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Fetcher retrieves the raw body of one sitemap document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResponse, error)
}

// FetchResponse holds a successful (2xx) fetch.
type FetchResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// HTTPFetcher implements Fetcher using net/http.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher backed by the given http.Client.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:       client,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs an HTTP GET. Every failure is returned as a *FetchError:
// transport errors, non-2xx statuses and oversized bodies alike. Gzip
// bodies are decompressed before they are returned.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, ClassifyNetworkError(fmt.Errorf("http fetcher new request: %w", err), url)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, ClassifyHTTPStatus(resp.StatusCode, url)
	}

	body, err := readLimited(resp.Body, f.maxBodyBytes)
	if err != nil {
		return nil, f.bodyError(err, url)
	}

	if bytes.HasPrefix(body, gzipMagic) {
		body, err = gunzip(body, f.maxBodyBytes)
		if errors.Is(err, errBodyTooLarge) {
			return nil, f.bodyError(err, url)
		}
		if err != nil {
			return nil, ClassifyParseError(err, url)
		}
	}

	return &FetchResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (f *HTTPFetcher) bodyError(err error, url string) *FetchError {
	if errors.Is(err, errBodyTooLarge) {
		return &FetchError{
			Type:  ErrTypeTooLarge,
			Level: LevelWarn,
			URL:   url,
			Cause: fmt.Errorf("%w: %d bytes", errBodyTooLarge, f.maxBodyBytes),
		}
	}
	return ClassifyNetworkError(err, url)
}

// readLimited reads r fully, failing with errBodyTooLarge past limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("http fetcher read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func gunzip(body []byte, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http fetcher gzip: %w", err)
	}
	defer zr.Close()

	return readLimited(zr, limit)
}
