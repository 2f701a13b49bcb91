// Package utils holds process setup shared by the plugsunset commands.
package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jmylchreest/plugsunset/internal/config"
)

// levels maps accepted level names to slog levels
var levels = map[string]slog.Level{
	config.LogLevelDebug: slog.LevelDebug,
	config.LogLevelInfo:  slog.LevelInfo,
	config.LogLevelWarn:  slog.LevelWarn,
	"warning":            slog.LevelWarn,
	config.LogLevelError: slog.LevelError,
}

// GetLogLevel converts a level name to slog.Level, defaulting to info
func GetLogLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// ValidateLogLevel returns the canonical name for level, or info if it is unknown
func ValidateLogLevel(level string) string {
	switch GetLogLevel(level) {
	case slog.LevelDebug:
		return config.LogLevelDebug
	case slog.LevelWarn:
		return config.LogLevelWarn
	case slog.LevelError:
		return config.LogLevelError
	default:
		return config.LogLevelInfo
	}
}

// ValidateLogFormat returns format if it is text or json, otherwise text
func ValidateLogFormat(format string) string {
	if strings.EqualFold(format, config.LogFormatJSON) {
		return config.LogFormatJSON
	}
	return config.LogFormatText
}

// NewHandler builds a text or JSON slog handler writing to w. Debug output
// carries the source location of each record.
func NewHandler(w io.Writer, level string, format string) slog.Handler {
	l := GetLogLevel(level)
	opts := &slog.HandlerOptions{Level: l, AddSource: l <= slog.LevelDebug}
	if ValidateLogFormat(format) == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetupLogger creates a logger writing to stderr with the given level and format
func SetupLogger(level string, format string) *slog.Logger {
	return slog.New(NewHandler(os.Stderr, level, format))
}

// SetupErrorLogger creates a simple text logger for reporting errors during startup.
func SetupErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetAsDefaultLogger sets a logger as the default logger
func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
