// Package infrastructure provides process-level plumbing shared by every
// stage, currently the structured logger construction.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salespulse/internal/config"
)

// Logger bundles a configured slog.Logger with the resources behind it.
// The logger is an explicit collaborator: it is built once at process start
// and handed to each component constructor. There is no package-level
// singleton, so tests can substitute a discard logger freely.
type Logger struct {
	*slog.Logger
	file *os.File
}

// NewLogger creates a logger according to cfg. Output "file" and "both"
// append to logFilePath; "both" mirrors every line to stdout. The handler is
// the human-readable text handler, one timestamped line per record.
func NewLogger(cfg config.LoggingConfig, logFilePath string) (*Logger, error) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}

	var output io.Writer
	var file *os.File

	switch strings.ToLower(cfg.Output) {
	case "file":
		f, err := openLogFile(logFilePath)
		if err != nil {
			return nil, err
		}
		file = f
		output = f
	case "both":
		f, err := openLogFile(logFilePath)
		if err != nil {
			return nil, err
		}
		file = f
		output = io.MultiWriter(os.Stdout, f)
	default:
		output = os.Stdout
	}

	return &Logger{
		Logger: slog.New(slog.NewTextHandler(output, opts)),
		file:   file,
	}, nil
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	// append-only sink
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
