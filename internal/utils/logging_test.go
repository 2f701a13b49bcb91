package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"info level", "info", slog.LevelInfo},
		{"warn level", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"case insensitive", "DEBUG", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetLogLevel(tt.level)
			if result != tt.expected {
				t.Errorf("GetLogLevel(%q) = %v, want %v", tt.level, result, tt.expected)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected string
	}{
		{"valid debug", "debug", "debug"},
		{"valid info", "info", "info"},
		{"valid warn", "warn", "warn"},
		{"valid error", "error", "error"},
		{"warning becomes warn", "warning", "warn"},
		{"upper case is canonicalised", "Error", "error"},
		{"invalid defaults to info", "invalid", "info"},
		{"empty defaults to info", "", "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateLogLevel(tt.level)
			if result != tt.expected {
				t.Errorf("ValidateLogLevel(%q) = %q, want %q", tt.level, result, tt.expected)
			}
		})
	}
}

func TestValidateLogFormat(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		expected string
	}{
		{"valid text", "text", "text"},
		{"valid json", "json", "json"},
		{"upper case json", "JSON", "json"},
		{"invalid defaults to text", "invalid", "text"},
		{"empty defaults to text", "", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateLogFormat(tt.format)
			if result != tt.expected {
				t.Errorf("ValidateLogFormat(%q) = %q, want %q", tt.format, result, tt.expected)
			}
		})
	}
}

func TestNewHandler(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, "info", "json"))
		logger.Info("plug: state applied", "state", "ON")

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
		}
		if record["state"] != "ON" {
			t.Errorf("state attribute = %v, want ON", record["state"])
		}
	})

	t.Run("level filters debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, "warn", "text"))
		logger.Info("hidden")
		logger.Warn("visible")
		if strings.Contains(buf.String(), "hidden") {
			t.Errorf("info record should be filtered at warn level: %q", buf.String())
		}
		if !strings.Contains(buf.String(), "visible") {
			t.Errorf("warn record missing: %q", buf.String())
		}
	})

	t.Run("debug adds source", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, "debug", "text"))
		logger.Debug("traced")
		if !strings.Contains(buf.String(), "source=") || !strings.Contains(buf.String(), "logging_test.go") {
			t.Errorf("expected source location at debug level, got %q", buf.String())
		}
	})

	t.Run("invalid values fall back to text info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, "bogus", "xml"))
		logger.Info("fallback")
		if !strings.Contains(buf.String(), "msg=fallback") {
			t.Errorf("expected text output, got %q", buf.String())
		}
	})
}

func TestSetupErrorLogger(t *testing.T) {
	if SetupErrorLogger() == nil {
		t.Error("SetupErrorLogger returned nil")
	}
}

func TestSetAsDefaultLogger(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	logger := SetupLogger("info", "text")
	SetAsDefaultLogger(logger)
	if slog.Default() != logger {
		t.Error("SetAsDefaultLogger did not replace the default logger")
	}
}
