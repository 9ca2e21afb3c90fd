package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/platform/logger"
)

// NewTraceMiddleware gives every request a trace ID and a request-scoped
// logger, derived from base, carrying it. It should run before any
// middleware that logs. A nil base falls back to slog.Default().
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Generate the trace ID and bind it to the request logger
			ctx := shared.SetTraceID(r.Context())
			log := base.With(slog.String("trace_id", shared.GetTraceID(ctx)))
			ctx = logger.WithLogger(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
