package sitemap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies why a branch contributed no URLs.
type ErrorType string

const (
	ErrTypeNetwork     ErrorType = "network"
	ErrTypeTimeout     ErrorType = "timeout"
	ErrTypeRateLimited ErrorType = "rate_limited"
	ErrTypeForbidden   ErrorType = "forbidden"
	ErrTypeNotFound    ErrorType = "not_found"
	ErrTypeGone        ErrorType = "gone"
	ErrTypeUpstream    ErrorType = "upstream_failure"
	ErrTypeUnexpected  ErrorType = "unexpected"
	ErrTypeTooLarge    ErrorType = "too_large"
	ErrTypeParse       ErrorType = "parse_error"
)

// LogLevel determines whether a FetchError is logged at WARN or ERROR.
type LogLevel int

const (
	LevelWarn LogLevel = iota
	LevelError
)

var (
	// ErrInternal marks a failure that is not attributable to a single
	// branch's network or content, such as a recovered panic.
	ErrInternal = errors.New("sitemap: internal error")

	errNoRootElement = errors.New("document has no root element")
	errBodyTooLarge  = errors.New("response body exceeds limit")
)

// FetchError is a classified per-branch fetch or parse failure. It never
// crosses the Resolve boundary; it is recorded on the Branch instead.
type FetchError struct {
	Type       ErrorType
	Level      LogLevel
	StatusCode int
	URL        string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("sitemap fetch %s: HTTP %d for %s", e.Type, e.StatusCode, e.URL)
	}

	return fmt.Sprintf("sitemap fetch %s: %v for %s", e.Type, e.Cause, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ClassifyHTTPStatus creates a FetchError from a non-2xx status code.
func ClassifyHTTPStatus(statusCode int, url string) *FetchError {
	e := &FetchError{Level: LevelWarn, StatusCode: statusCode, URL: url, Cause: fmt.Errorf("HTTP %d", statusCode)}

	switch {
	case statusCode == http.StatusTooManyRequests:
		e.Type = ErrTypeRateLimited
	case statusCode == http.StatusForbidden:
		e.Type = ErrTypeForbidden
	case statusCode == http.StatusNotFound:
		e.Type = ErrTypeNotFound
	case statusCode == http.StatusGone:
		e.Type = ErrTypeGone
	case statusCode >= http.StatusInternalServerError && statusCode <= 599:
		e.Type = ErrTypeUpstream
	default:
		e.Type = ErrTypeUnexpected
		e.Level = LevelError
	}

	return e
}

// ClassifyNetworkError creates a FetchError for transport failures. Deadline
// expiry is reported as a timeout.
func ClassifyNetworkError(cause error, url string) *FetchError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return &FetchError{Type: ErrTypeTimeout, Level: LevelWarn, URL: url, Cause: cause}
	}

	var te interface{ Timeout() bool }
	if errors.As(cause, &te) && te.Timeout() {
		return &FetchError{Type: ErrTypeTimeout, Level: LevelWarn, URL: url, Cause: cause}
	}

	return &FetchError{Type: ErrTypeNetwork, Level: LevelWarn, URL: url, Cause: cause}
}

// ClassifyParseError creates a FetchError for malformed XML.
func ClassifyParseError(cause error, url string) *FetchError {
	return &FetchError{Type: ErrTypeParse, Level: LevelWarn, URL: url, Cause: cause}
}

// ErrorTypeOf returns the classification of err, or "" when err is not a
// FetchError.
func ErrorTypeOf(err error) ErrorType {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ""
}
