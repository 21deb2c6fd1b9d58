// Package logging holds the structured logging helpers shared by the API,
// the storage layer and the CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey struct{}

// NewStructuredLogger returns a JSON slog logger writing to w.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request-scoped logger, or slog.Default when none
// was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// LogOperation records a completed domain operation at info level.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, attrs...)
}

// LogError records err with msg at error level.
func LogError(logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.String("error", errString(err)))
	all = append(all, attrs...)
	logger.LogAttrs(context.Background(), slog.LevelError, msg, all...)
}

// SafeCloseWithLogging closes c and logs instead of returning the error.
// Used in defers where there is no caller left to report to.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, name string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("resource", name))
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
