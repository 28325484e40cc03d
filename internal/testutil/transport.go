// Package testutil provides an in-memory HTTP transport for tests that
// exercise sitemap fetching without a network.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"
)

// MockResponse is a canned reply for one URL.
type MockResponse struct {
	// StatusCode defaults to 200.
	StatusCode int
	Body       []byte
	Headers    http.Header
	// Delay is waited before replying; a cancelled request context cuts it short.
	Delay time.Duration
	// Error simulates a transport failure.
	Error error
}

// MockTransport implements http.RoundTripper from registered responses and
// counts requests per URL. Unregistered URLs get a 404.
type MockTransport struct {
	mu        sync.Mutex
	responses map[string]*MockResponse
	counts    map[string]int
	inFlight  int
	peak      int
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses: make(map[string]*MockResponse),
		counts:    make(map[string]int),
	}
}

// RegisterResponse registers resp for an exact URL.
func (m *MockTransport) RegisterResponse(url string, resp *MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	if resp.Headers == nil {
		resp.Headers = make(http.Header)
	}
	m.responses[url] = resp
}

// RegisterXML registers a 200 application/xml response.
func (m *MockTransport) RegisterXML(url, body string) {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/xml; charset=utf-8")
	m.RegisterResponse(url, &MockResponse{Body: []byte(body), Headers: headers})
}

// RegisterStatus registers an empty response with the given status.
func (m *MockTransport) RegisterStatus(url string, status int) {
	m.RegisterResponse(url, &MockResponse{StatusCode: status})
}

// RegisterError registers a transport failure for url.
func (m *MockTransport) RegisterError(url string, err error) {
	m.RegisterResponse(url, &MockResponse{Error: err})
}

// RequestCount returns how many requests were made for url.
func (m *MockTransport) RequestCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[url]
}

// Total returns the number of requests made for any URL.
func (m *MockTransport) Total() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, n := range m.counts {
		total += n
	}
	return total
}

// PeakInFlight returns the highest number of concurrent requests observed.
func (m *MockTransport) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// RoundTrip implements http.RoundTripper.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	url := req.URL.String()

	m.mu.Lock()
	m.counts[url]++
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	mock, found := m.responses[url]
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if !found {
		return newResponse(req, http.StatusNotFound, nil, []byte("Not Found")), nil
	}

	if mock.Delay > 0 {
		timer := time.NewTimer(mock.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	if mock.Error != nil {
		return nil, mock.Error
	}

	return newResponse(req, mock.StatusCode, mock.Headers, mock.Body), nil
}

func newResponse(req *http.Request, status int, headers http.Header, body []byte) *http.Response {
	return &http.Response{
		Status:        http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers.Clone(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// Client returns an *http.Client that sends every request through m.
func (m *MockTransport) Client() *http.Client {
	return &http.Client{Transport: m}
}
