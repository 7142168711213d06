// Package logger builds the process-wide zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Options controls where log output goes.
type Options struct {
	// File receives JSON logs when set. Parent directories are created.
	File string
	// Pretty writes human-readable logs to stderr. Ignored when File is set.
	Pretty bool
	// Discard drops all output, for front ends that own the terminal.
	Discard bool
}

// InitWithOptions initializes the logger. The level comes from the LOG_LEVEL
// environment variable (trace, debug, info, warn, error) and defaults to info.
func InitWithOptions(opts Options) (zerolog.Logger, error) {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))

	var output io.Writer
	switch {
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		//nolint:gosec // G304: User-specified log file path is intentional
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		output = file
	case opts.Discard:
		return zerolog.Nop(), nil
	case opts.Pretty:
		output = zerolog.ConsoleWriter{Out: os.Stderr}
	default:
		output = os.Stderr
	}

	log := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Debug().Str("path", opts.File).Str("level", level.String()).Msg("Logger initialized")
	return log, nil
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
