// Package server exposes the two-endpoint HTTP surface: probe a URL for
// quality options, or download/merge a chosen format server-side and stream
// the file back.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"vidfetch/internal/cleanup"
	"vidfetch/internal/config"
	"vidfetch/internal/version"
	"vidfetch/internal/ytdlp"
)

// Extractor is the external extraction collaborator. Probe never writes
// files; Fetch produces exactly one file under the temp directory.
type Extractor interface {
	Probe(ctx context.Context, url string) (*ytdlp.Info, error)
	Fetch(ctx context.Context, url, formatID string) (*ytdlp.FetchResult, error)
}

// Server is the vidfetch HTTP server.
type Server struct {
	cfg       *config.Config
	extractor Extractor
	janitor   *cleanup.Janitor
	log       *logrus.Entry

	engine *gin.Engine
	server *http.Server
}

// New wires the server. All collaborators are passed in; the server holds no
// global state.
func New(cfg *config.Config, extractor Extractor, janitor *cleanup.Janitor, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		cfg:       cfg,
		extractor: extractor,
		janitor:   janitor,
		log:       log.WithField("component", "server"),
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())
	s.engine.Use(corsMiddleware())

	s.engine.GET("/", s.handleHome)

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/get-video-info", s.handleVideoInfo)
	api.GET("/get-download-link", s.handleDownloadLink)
	api.POST("/get-download-link", s.handleDownloadLink)

	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // downloads can run for a long time
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start ensures the temp directory exists and serves until Stop.
func (s *Server) Start() error {
	if err := os.MkdirAll(s.cfg.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"addr":     s.server.Addr,
		"temp_dir": s.cfg.TempDir,
	}).Info("starting vidfetch server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the listener.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHome(c *gin.Context) {
	c.String(http.StatusOK, "Video Downloader Backend is running!")
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.Version,
	})
}
