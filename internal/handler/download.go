package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DownloadFilename is the attachment name of POST /api/download.
const DownloadFilename = "sitemap_urls.csv"

// DownloadRequest is the body of POST /api/download.
type DownloadRequest struct {
	CSVData string `json:"csv_data"`
}

// Download echoes previously extracted CSV back as a file attachment.
func (h *ExtractHandler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CSVData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoCSV})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+DownloadFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(req.CSVData))
}
