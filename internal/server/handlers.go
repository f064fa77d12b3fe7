package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"

	"vidfetch/internal/format"
)

type infoRequest struct {
	URL string `json:"url"`
}

type downloadRequest struct {
	URL          string `json:"url"`
	FormatID     string `json:"format_id"`
	FilenameHint string `json:"filename_hint"`
}

// handleVideoInfo probes a URL and returns the ordered quality options.
func (s *Server) handleVideoInfo(c *gin.Context) {
	var req infoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	s.log.WithField("url", req.URL).Info("fetching video info")

	info, err := s.extractor.Probe(c.Request.Context(), req.URL)
	if err != nil {
		s.log.WithError(err).WithField("url", req.URL).Warn("probe failed")
		renderError(c, err)
		return
	}

	qualities, err := format.SelectQualities(info)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"qualities": qualities})
}

// handleDownloadLink downloads the chosen format server-side, streams the
// merged file back as an attachment and schedules its deletion.
func (s *Server) handleDownloadLink(c *gin.Context) {
	req := s.downloadParams(c)
	if req.URL == "" || req.FormatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL or format ID not provided"})
		return
	}

	s.log.WithFields(logrus.Fields{
		"url":       req.URL,
		"format_id": req.FormatID,
	}).Info("downloading for direct serve")

	result, err := s.extractor.Fetch(c.Request.Context(), req.URL, req.FormatID)
	if err != nil {
		s.log.WithError(err).WithField("url", req.URL).Warn("fetch failed")
		renderError(c, err)
		return
	}

	if _, err := os.Stat(result.Path); err != nil {
		renderError(c, fmt.Errorf("downloaded file not found at %s: %w", result.Path, err))
		return
	}

	title := result.Title
	if title == "" {
		title = "video"
	}
	ext := filepath.Ext(result.Path)
	name := sanitizeTitle(title)
	if name == "" {
		name = "video_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	downloadName := name + ext

	// The file is deleted after the response has had time to stream out; the
	// janitor retries if the handle is still open.
	s.janitor.Schedule(result.Path)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	c.Header("Content-Type", "video/"+strings.TrimPrefix(ext, "."))
	c.File(result.Path)
}

// downloadParams reads url/format_id/filename_hint from the JSON body on
// POST and from the query string on GET.
func (s *Server) downloadParams(c *gin.Context) downloadRequest {
	if c.Request.Method == http.MethodPost {
		var req downloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return downloadRequest{}
		}
		return req
	}
	return downloadRequest{
		URL:          c.Query("url"),
		FormatID:     c.Query("format_id"),
		FilenameHint: c.Query("filename_hint"),
	}
}
