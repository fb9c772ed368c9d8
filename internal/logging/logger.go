// Package logging provides structured logging configuration using log/slog.
//
// Request IDs set by chi's RequestID middleware are attached to every entry
// logged through FromContext, so all lines for one request can be correlated.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Setup configures the global slog logger based on level and format and
// returns it.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// "text" writes colored output to stderr when it is a terminal.
// "json" writes one object per line to stdout for log shippers.
func Setup(level, format string) *slog.Logger {
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = NewHandler(os.Stdout, level, format, false)
	} else {
		handler = NewHandler(colorable.NewColorable(os.Stderr), level, format, isatty.IsTerminal(os.Stderr.Fd()))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds the slog handler Setup installs, writing to w.
func NewHandler(w io.Writer, level, format string, color bool) slog.Handler {
	lvl := parseLevel(level)

	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: "15:04:05.000",
		NoColor:    !color,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Loopback clients add noise in local development.
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			return a
		},
	})
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
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

// FromContext returns a logger enriched with request context.
//
// When ctx carries a chi RequestID, the returned logger includes
// request_id in all entries.
//
//	func handleUpload(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("upload received", "file_name", name)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a request logger with additional structured fields.
//
//	datasetLogger := logging.WithFields(ctx, "dataset_id", id)
//	datasetLogger.Info("dataset created", "rows", n)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
