package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Dosada05/clubhub/metrics"
)

// Telemetry records request metrics by route pattern and logs each request.
func Telemetry(m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			// шаблон маршрута, чтобы не плодить метки по id
			pattern := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			if m != nil {
				m.ObserveRequest(r.Method, pattern, status, duration)
			}

			logger.Info("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"route", pattern,
				"status", status,
				"duration", duration,
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
