package httputil

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MetricsMiddleware records HTTP request metrics labelled by route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method,
			routePattern(r),
			strconv.Itoa(statusOrOK(ww.Status())),
		).Observe(time.Since(start).Seconds())
	})
}

// routePattern returns the matched chi pattern rather than the raw path
// to keep label cardinality bounded.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unknown"
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unknown"
}

// statusOrOK treats an unwritten status as 200, matching net/http behaviour.
func statusOrOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
