// Package logging configures log/slog for the server and the CLI.
//
// Request-scoped loggers pick up chi's request ID and the import source
// (client IP or "cli") from the context, so every line written while an
// import runs can be traced back to the call that caused it.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/go-chi/chi/v5/middleware"
)

// New builds a logger writing to w. format is "json" or "text"; level is
// debug, info, warn or error.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup installs a stdout logger as the slog default.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// SetupStderr installs a stderr logger as the slog default. The CLI uses it
// so that stdout stays free for command output.
func SetupStderr(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// FromContext returns the default logger with request_id and source attached
// when ctx carries them.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if src := core.SourceFromContext(ctx); src != "" {
		logger = logger.With("source", src)
	}
	return logger
}

// WithFields returns FromContext(ctx) with extra key/value pairs.
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
