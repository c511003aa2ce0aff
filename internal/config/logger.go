package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const defaultServiceName = "storefront"

// NewLogger builds the process logger writing to stdout. Every record carries
// the service name and, when it resolves, the host name.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg LoggerConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	// Request and checkout latencies are reported in milliseconds.
	zerolog.DurationFieldUnit = time.Millisecond

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	service := cfg.Service
	if service == "" {
		service = defaultServiceName
	}

	logCtx := zerolog.New(out).Level(level).With().Timestamp().Str("service", service)
	if host, err := os.Hostname(); err == nil {
		logCtx = logCtx.Str("host", host)
	}
	return logCtx.Logger()
}
