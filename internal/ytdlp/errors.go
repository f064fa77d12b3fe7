package ytdlp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedURL means yt-dlp does not recognize the site or URL.
	ErrUnsupportedURL = errors.New("unsupported platform or invalid video URL")

	// ErrAccessDenied means the video is private or behind a login wall.
	ErrAccessDenied = errors.New("video is private or requires login")

	// ErrNoFilePath means the download finished but no output path could be
	// resolved from the result.
	ErrNoFilePath = errors.New("yt-dlp did not provide a valid downloaded file path")
)

// ExtractionError is a generic yt-dlp failure carrying the tail of its
// stderr output for diagnostics.
type ExtractionError struct {
	Op     string // "probe" or "fetch"
	Output string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("yt-dlp %s failed: %s", e.Op, e.Output)
	}
	return fmt.Sprintf("yt-dlp %s failed: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

const maxErrOutput = 400

// classify maps yt-dlp's stderr text onto the coarse public error kinds.
// Anything unrecognized becomes an ExtractionError.
func classify(op, stderr string, err error) error {
	switch {
	case strings.Contains(stderr, "Unsupported URL"):
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, lastLine(stderr))
	case strings.Contains(stderr, "Private video"),
		strings.Contains(stderr, "Login required"),
		strings.Contains(stderr, "Sign in to confirm"):
		return fmt.Errorf("%w: %s", ErrAccessDenied, lastLine(stderr))
	}
	return &ExtractionError{Op: op, Output: truncate(strings.TrimSpace(stderr), maxErrOutput), Err: err}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
