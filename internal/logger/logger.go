// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Provides Init() for the default logger and a debug.log sink for the TUI.

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DebugLogName is the file the TUI logs to inside the config directory
const DebugLogName = "debug.log"

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
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

// OpenDebugLog opens debug.log in configDir for appending, creating the
// directory if needed. The full-screen TUI cannot log to the terminal.
func OpenDebugLog(configDir string) (*os.File, error) {
	if configDir == "" {
		return nil, fmt.Errorf("no config directory for %s", DebugLogName)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(configDir, DebugLogName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", DebugLogName, err)
	}
	return f, nil
}
