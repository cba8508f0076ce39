package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/supplyplan/pkg/config"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds a logger from the log section of the configuration.
// Logs go to stderr so that report output on stdout stays parseable.
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination
func NewWithOutput(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(parseLevel(cfg.Level))

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}
	return logger
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
