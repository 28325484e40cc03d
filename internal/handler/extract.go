// Package handler implements the HTTP handlers of the sitemap extractor API.
package handler

//go:generate mockgen -destination=../../testutils/mocks/resolver/resolver.go -package=resolver . Resolver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	infralogger "github.com/masoudtahsiri/sitemap-extractor/infrastructure/logger"
	"github.com/masoudtahsiri/sitemap-extractor/internal/export"
	"github.com/masoudtahsiri/sitemap-extractor/internal/sitemap"
)

// Client-facing error messages.
const (
	msgURLRequired   = "Sitemap URL is required"
	msgInvalidURL    = "Invalid URL format"
	msgNoURLs        = "No URLs found in sitemap"
	msgExtractFailed = "Failed to extract URLs from sitemap"
	msgNoCSV         = "No CSV data provided"
)

// Resolver expands a root sitemap URL into page URLs.
type Resolver interface {
	Resolve(ctx context.Context, rootURL string) (*sitemap.Result, error)
}

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	SitemapURL string `json:"sitemap_url"`
}

// ExtractResponse is the success body of POST /api/extract.
type ExtractResponse struct {
	Success  bool   `json:"success"`
	URLCount int    `json:"url_count"`
	CSVData  string `json:"csv_data"`
}

// ExtractHandler serves URL extraction and CSV download.
type ExtractHandler struct {
	resolver Resolver
	logger   infralogger.Logger
	timeout  time.Duration
}

// NewExtractHandler creates an ExtractHandler. timeout bounds each
// extraction; zero disables the bound.
func NewExtractHandler(resolver Resolver, log infralogger.Logger, timeout time.Duration) *ExtractHandler {
	return &ExtractHandler{
		resolver: resolver,
		logger:   log,
		timeout:  timeout,
	}
}

// Extract resolves the posted sitemap URL and returns its page URLs as CSV.
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgURLRequired})
		return
	}

	rootURL, err := sitemap.ValidateRootURL(req.SitemapURL)
	if err != nil {
		msg := msgInvalidURL
		if errors.Is(err, sitemap.ErrURLRequired) {
			msg = msgURLRequired
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	log := infralogger.FromContext(ctx)

	res, err := h.resolver.Resolve(ctx, rootURL)
	if err != nil {
		log.Error("Sitemap extraction failed",
			infralogger.String("sitemap_url", rootURL),
			infralogger.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgExtractFailed})
		return
	}

	if len(res.URLs) == 0 {
		log.Info("Sitemap yielded no URLs",
			infralogger.String("sitemap_url", rootURL),
			infralogger.Int("visited", res.Visited),
			infralogger.Int("failed", len(res.Failed())),
		)
		c.JSON(http.StatusNotFound, gin.H{"error": msgNoURLs})
		return
	}

	csvData, err := export.CSV(res.URLs)
	if err != nil {
		log.Error("CSV rendering failed", infralogger.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgExtractFailed})
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Success:  true,
		URLCount: len(res.URLs),
		CSVData:  csvData,
	})
}
