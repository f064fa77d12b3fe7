// Package logging configures the process-wide logrus logger.
package logging

import (
	logrus "github.com/sirupsen/logrus"

	"vidfetch/internal/config"
)

// Setup applies the configured level and formatter to the standard logger
// and returns it. Unparseable levels fall back to info.
func Setup(cfg config.LogConfig) *logrus.Logger {
	log := logrus.StandardLogger()

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}
