// Package logging sets up structured logging with log/slog and logs HTTP requests.
package logging

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/wansing/newsroom/util"
)

// RequestIDHeader is read from and written to.
const RequestIDHeader = "X-Request-ID"

type contextKey struct{}

// NewLogger creates a logger which writes text or JSON to w.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	var opts = &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// FromContext returns the request logger, or slog.Default() if there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// Middleware assigns a request id, stores a request logger in the context and logs every request after it has been served.
func Middleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, requestID)

		var reqLogger = logger.With("request_id", requestID)
		var rec = util.NewStatusRecorder(w)
		var start = time.Now()

		next.ServeHTTP(rec, r.WithContext(WithLogger(r.Context(), reqLogger)))

		reqLogger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status,
			"duration", time.Since(start),
		)
	})
}
