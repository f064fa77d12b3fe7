package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidfetch/internal/format"
	"vidfetch/internal/ytdlp"
)

// renderError is the single place internal failures become status codes.
// Lower layers return typed errors and never touch HTTP.
func renderError(c *gin.Context, err error) {
	var extractErr *ytdlp.ExtractionError

	switch {
	case errors.Is(err, ytdlp.ErrUnsupportedURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported platform or invalid video URL."})
	case errors.Is(err, ytdlp.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Video is private or requires login."})
	case errors.Is(err, format.ErrNoFormats):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No suitable downloadable formats found."})
	case errors.Is(err, ytdlp.ErrNoFilePath):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "yt-dlp did not provide a valid downloaded file path."})
	case errors.As(err, &extractErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Could not process video: %v", extractErr)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("An unexpected error occurred: %v", err)})
	}
}
