package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/videohub/internal/metrics"
)

// Metrics records request duration and the in-flight count.
//
// Requests are labelled with chi's route pattern ("/api/videos/{id}") rather
// than the raw path, so one video id does not create one time series.
// Unmatched requests share the "unmatched" label. The /metrics endpoint
// itself is not instrumented.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.RequestDuration.
				WithLabelValues(routePattern(r), r.Method, strconv.Itoa(wrapped.statusCode)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// routePattern is only complete after routing, so it is read once the
// handler has returned.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
