// Package logging builds the structured logger shared by every component.
// The console always receives records; an optional log file receives a copy.
//
// Example usage:
//
//	logger, closer, err := logging.New(logging.Config{Level: "info", File: "invite_agent.log"}, os.Stderr)
//	defer closer.Close()
//	logger.Info("pre-scan started", "profiles", 120)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

// Config holds the configuration for the logger.
type Config struct {
	// Level sets the minimum log level. Valid values: debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format sets the output format. Valid values: json, text
	Format string `mapstructure:"format"`
	// File is an optional path that receives a copy of every record
	File string `mapstructure:"file"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger writing to console and, if configured, to cfg.File.
// The returned closer releases the log file.
func New(cfg Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid logging config: %w", err)
	}
	cfg.setDefaults()

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	if console == nil {
		console = os.Stderr
	}
	writer := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %q: %w", cfg.File, err)
		}
		writer = io.MultiWriter(console, file)
		closer = file
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler), closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

func (cfg *Config) validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	if cfg.Level != "" && !slices.Contains(validLevels, strings.ToLower(cfg.Level)) {
		return fmt.Errorf("level must be one of: %s", strings.Join(validLevels, ", "))
	}

	validFormats := []string{"json", "text"}
	if cfg.Format != "" && !slices.Contains(validFormats, cfg.Format) {
		return fmt.Errorf("format must be one of: %s", strings.Join(validFormats, ", "))
	}

	return nil
}

func (cfg *Config) setDefaults() {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level: %s", level)
	}
}
