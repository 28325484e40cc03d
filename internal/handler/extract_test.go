package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	infralogger "github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
	"github.com/masoudtahsiri/sitemap-extractor/internal/handler"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
	resolvermock "github.com/masoudtahsiri/sitemap-extractor/testutils/mocks/resolver"
)

const rootURL = "https://a/sitemap_index.xml"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, timeout time.Duration) (*gin.Engine, *resolvermock.MockResolver) {
	t.Helper()

	ctrl := gomock.NewController(t)
	resolver := resolvermock.NewMockResolver(ctrl)

	h := handler.NewExtractHandler(resolver, infralogger.NewNop(), timeout)
	r := gin.New()
	r.POST("/api/extract", h.Extract)
	r.POST("/api/download", h.Download)

	return r, resolver
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestExtract_Success(t *testing.T) {
	t.Parallel()

	r, resolver := setupRouter(t, time.Minute)
	resolver.EXPECT().
		Resolve(gomock.Any(), rootURL).
		Return(&sitemap.Result{URLs: []string{"https://a/p1", "https://a/p2", "https://a/p3"}}, nil)

	w := post(r, "/api/extract", `{"sitemap_url": "  `+rootURL+`  "}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.URLCount)
	assert.Equal(t, "URL\r\nhttps://a/p1\r\nhttps://a/p2\r\nhttps://a/p3\r\n", resp.CSVData)
}

func TestExtract_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing field", `{}`, "Sitemap URL is required"},
		{"blank field", `{"sitemap_url": "   "}`, "Sitemap URL is required"},
		{"not json", `sitemap please`, "Sitemap URL is required"},
		{"no scheme", `{"sitemap_url": "example.com/sitemap.xml"}`, "Invalid URL format"},
		{"no host", `{"sitemap_url": "https://"}`, "Invalid URL format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// No EXPECT: any Resolve call fails the test.
			r, _ := setupRouter(t, time.Minute)

			w := post(r, "/api/extract", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, errorBody(t, w))
		})
	}
}

func TestExtract_EmptyResultIsNotFound(t *testing.T) {
	t.Parallel()

	r, resolver := setupRouter(t, time.Minute)
	resolver.EXPECT().
		Resolve(gomock.Any(), rootURL).
		Return(&sitemap.Result{URLs: []string{}}, nil)

	w := post(r, "/api/extract", `{"sitemap_url": "`+rootURL+`"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No URLs found in sitemap", errorBody(t, w))
}

func TestExtract_ResolveErrorIsGeneric500(t *testing.T) {
	t.Parallel()

	r, resolver := setupRouter(t, time.Minute)
	resolver.EXPECT().
		Resolve(gomock.Any(), rootURL).
		Return(&sitemap.Result{URLs: []string{"https://a/p1"}}, errors.New("secret internal detail"))

	w := post(r, "/api/extract", `{"sitemap_url": "`+rootURL+`"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to extract URLs from sitemap", errorBody(t, w))
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestExtract_AppliesRequestTimeout(t *testing.T) {
	t.Parallel()

	r, resolver := setupRouter(t, 30*time.Second)
	resolver.EXPECT().
		Resolve(gomock.Any(), rootURL).
		DoAndReturn(func(ctx context.Context, _ string) (*sitemap.Result, error) {
			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, 5*time.Second)
			return &sitemap.Result{URLs: []string{"https://a/p1"}}, nil
		})

	w := post(r, "/api/extract", `{"sitemap_url": "`+rootURL+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDownload(t *testing.T) {
	t.Parallel()

	r, _ := setupRouter(t, time.Minute)
	csvData := "URL\r\nhttps://a/p1\r\n"

	body, err := json.Marshal(handler.DownloadRequest{CSVData: csvData})
	require.NoError(t, err)

	w := post(r, "/api/download", string(body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvData, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	assert.Equal(t, `attachment; filename="sitemap_urls.csv"`, w.Header().Get("Content-Disposition"))
}

func TestDownload_Empty(t *testing.T) {
	t.Parallel()

	r, _ := setupRouter(t, time.Minute)

	for _, body := range []string{`{}`, `{"csv_data": ""}`, `nope`} {
		w := post(r, "/api/download", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No CSV data provided", errorBody(t, w))
	}
}
