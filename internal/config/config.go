// Package config loads server configuration from an optional YAML file with
// environment variable overrides. The resulting Config is passed explicitly
// into each component; nothing in the process reads configuration globally.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CleanupConfig tunes the delayed temp-file janitor.
type CleanupConfig struct {
	DelaySeconds int `yaml:"delay_seconds"`
	MaxRetries   int `yaml:"max_retries"`
	Workers      int `yaml:"workers"`
	QueueSize    int `yaml:"queue_size"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the full configuration for the vidfetch process.
type Config struct {
	Server              ServerConfig  `yaml:"server"`
	YtdlpPath           string        `yaml:"ytdlp_path"`
	FFmpegLocation      string        `yaml:"ffmpeg_location"`
	TempDir             string        `yaml:"temp_dir"`
	FetchTimeoutMinutes int           `yaml:"fetch_timeout_minutes"`
	Cleanup             CleanupConfig `yaml:"cleanup"`
	Log                 LogConfig     `yaml:"log"`
}

// Default returns the configuration used when no file or overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "",
			Port: 5000,
		},
		YtdlpPath:           "yt-dlp",
		TempDir:             "temp_downloads",
		FetchTimeoutMinutes: 30,
		Cleanup: CleanupConfig{
			DelaySeconds: 5,
			MaxRetries:   5,
			Workers:      4,
			QueueSize:    64,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path (if path is non-empty) on top of the
// defaults, then applies environment overrides. A missing file at an empty
// path is not an error; a missing file at an explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VIDFETCH_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("VIDFETCH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("VIDFETCH_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("VIDFETCH_FFMPEG_LOCATION"); v != "" {
		c.FFmpegLocation = v
	}
	if v := os.Getenv("VIDFETCH_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("VIDFETCH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.YtdlpPath == "" {
		return fmt.Errorf("ytdlp_path must not be empty")
	}
	if c.TempDir == "" {
		return fmt.Errorf("temp_dir must not be empty")
	}
	if c.Cleanup.MaxRetries < 1 {
		c.Cleanup.MaxRetries = 1
	}
	if c.Cleanup.Workers < 1 {
		c.Cleanup.Workers = 1
	}
	if c.Cleanup.QueueSize < 1 {
		c.Cleanup.QueueSize = 1
	}
	return nil
}

// Addr returns the host:port string for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// CleanupDelay returns the initial janitor delay as a duration.
func (c *Config) CleanupDelay() time.Duration {
	return time.Duration(c.Cleanup.DelaySeconds) * time.Second
}

// FetchTimeout returns the per-download yt-dlp timeout; zero disables it.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMinutes) * time.Minute
}
