// Package logging provides the process-wide structured logger.
// Supports JSON and text formats; components get child loggers tagged with a
// "component" field.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

var (
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	globalMu     sync.RWMutex
)

// Init replaces the global logger. An invalid level still installs a logger at
// info level and returns the parse error so callers can report it.
func Init(cfg Config) error {
	logger, err := New(cfg, os.Stdout)
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return err
}

// New builds a logger writing to out.
func New(cfg Config, out io.Writer) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "text") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, err
}

// Get returns the global logger.
func Get() zerolog.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Component returns a child of the global logger with the component field set.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}
