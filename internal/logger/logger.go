// Package logger wraps zerolog with the service-wide field conventions.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	Level       string // debug | info | warn | error (default info)
	Environment string // "development" enables console output
	ServiceName string
	Version     string
}

// Logger embeds a configured zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// New builds the process logger. Development environments get human-readable
// console output; everything else logs JSON to stdout.
func New(cfg Config) *Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
		level = parsed
	}

	var out = os.Stdout
	var log zerolog.Logger
	if cfg.Environment == "development" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(out)
	}

	log = log.Level(level).With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.Version).
		Logger()

	return &Logger{Logger: log}
}
