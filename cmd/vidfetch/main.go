package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	logrus "github.com/sirupsen/logrus"

	"vidfetch/internal/cleanup"
	"vidfetch/internal/config"
	"vidfetch/internal/logging"
	"vidfetch/internal/server"
	"vidfetch/internal/ytdlp"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Environment variables may also come from a .env file; absence is fine.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found")
	}

	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "override listen port")
	tempDir := flag.String("temp-dir", "", "override temp download directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *tempDir != "" {
		cfg.TempDir = *tempDir
	}

	log := logging.Setup(cfg.Log)

	client := ytdlp.New(ytdlp.Options{
		BinPath:    cfg.YtdlpPath,
		FFmpegPath: cfg.FFmpegLocation,
		TempDir:    cfg.TempDir,
		Timeout:    cfg.FetchTimeout(),
		Log:        log,
	})

	janitor := cleanup.New(cleanup.Options{
		Delay:      cfg.CleanupDelay(),
		MaxRetries: cfg.Cleanup.MaxRetries,
		Workers:    cfg.Cleanup.Workers,
		QueueSize:  cfg.Cleanup.QueueSize,
		Log:        log,
	})

	srv := server.New(cfg, client, janitor, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Warnf("server shutdown: %v", err)
	}
	if err := janitor.Stop(ctx); err != nil {
		log.Warnf("cleanup shutdown: %v", err)
	}
}
