// Package ytdlp invokes the external yt-dlp binary. All site-specific
// extraction, demuxing and merging happens inside yt-dlp (and the ffmpeg
// binary it is pointed at); this package only builds argument lists, decodes
// result JSON and cleans up partial artifacts on failure.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"
)

// Options configures a Client. BinPath and TempDir are required; FFmpegPath
// is forwarded to yt-dlp as --ffmpeg-location when set.
type Options struct {
	BinPath    string
	FFmpegPath string
	TempDir    string
	Timeout    time.Duration
	Log        *logrus.Logger
}

// Client runs yt-dlp. Safe for concurrent use; every Fetch writes under a
// fresh random prefix so concurrent downloads never collide.
type Client struct {
	binPath    string
	ffmpegPath string
	tempDir    string
	timeout    time.Duration
	log        *logrus.Entry
}

// New builds a Client from options, filling unset fields with defaults.
func New(opts Options) *Client {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	bin := opts.BinPath
	if bin == "" {
		bin = "yt-dlp"
	}
	return &Client{
		binPath:    bin,
		ffmpegPath: opts.FFmpegPath,
		tempDir:    opts.TempDir,
		timeout:    opts.Timeout,
		log:        log.WithField("component", "ytdlp"),
	}
}

// Probe fetches metadata and the format list for url without downloading
// anything.
func (c *Client) Probe(ctx context.Context, url string) (*Info, error) {
	args := []string{
		"--dump-single-json",
		"--no-playlist",
		"--no-warnings",
		"--skip-download",
	}
	if c.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegPath)
	}
	args = append(args, url)

	stdout, stderr, err := c.run(ctx, args)
	if err != nil {
		return nil, classify("probe", stderr, err)
	}

	var info Info
	if err := json.Unmarshal(stdout, &info); err != nil {
		return nil, &ExtractionError{Op: "probe", Output: "unparseable info JSON", Err: err}
	}
	return &info, nil
}

// Fetch downloads url in the requested format into the temp directory and
// returns the resulting file. The format selector falls back through
// bestvideo+bestaudio to best, and separate streams are merged into a single
// mp4 container. Partial artifacts are removed before any error return.
func (c *Client) Fetch(ctx context.Context, url, formatID string) (*FetchResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	token := uuid.New().String()
	outTemplate := filepath.Join(c.tempDir, token+"_%(title)s.%(ext)s")

	args := []string{
		"-f", fmt.Sprintf("%s+bestaudio/bestvideo+bestaudio/best", formatID),
		"-o", outTemplate,
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--no-warnings",
		"--print-json",
	}
	if c.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegPath)
	}
	args = append(args, url)

	stdout, stderr, err := c.run(ctx, args)
	if err != nil {
		c.removePartials(token)
		return nil, classify("fetch", stderr, err)
	}

	var result downloadResult
	if err := json.Unmarshal(stdout, &result); err != nil {
		c.removePartials(token)
		return nil, &ExtractionError{Op: "fetch", Output: "unparseable download JSON", Err: err}
	}

	path, ok := result.resolvePath()
	if !ok {
		c.removePartials(token)
		return nil, ErrNoFilePath
	}
	if _, err := os.Stat(path); err != nil {
		c.removePartials(token)
		return nil, fmt.Errorf("downloaded file not found at %s: %w", path, err)
	}

	return &FetchResult{Path: path, Title: result.Title}, nil
}

func (c *Client) run(ctx context.Context, args []string) (stdout []byte, stderr string, err error) {
	cmd := exec.CommandContext(ctx, c.binPath, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	c.log.WithField("args", args).Debug("running yt-dlp")
	if err := cmd.Run(); err != nil {
		return out.Bytes(), errBuf.String(), err
	}
	return out.Bytes(), errBuf.String(), nil
}

// removePartials deletes anything yt-dlp left behind under this fetch's
// random prefix. Best effort: a failed download must not leak temp files,
// but a failed delete here is only logged.
func (c *Client) removePartials(token string) {
	matches, err := filepath.Glob(filepath.Join(c.tempDir, token+"_*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			c.log.WithError(err).WithField("path", m).Warn("could not remove partial file")
		} else {
			c.log.WithField("path", m).Info("removed partial file after failed download")
		}
	}
}
