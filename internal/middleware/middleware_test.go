package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sakif/videohub/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(Logger(logger))
	r.Get("/api/videos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hello"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "path=/api/videos")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "bytes=5")
	assert.Contains(t, out, "requestID=")
	assert.NotContains(t, out, `requestID=""`)

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestMetrics(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/api/videos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/videos/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Three ids share one route label; /metrics is not recorded.
	count, err := testutil.GatherAndCount(m.Registry(), "videohub_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(),
		`videohub_http_request_duration_seconds_count{method="GET",route="/api/videos/{id}",status="404"} 3`)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestsInFlight))
}

func TestMetrics_NilIsPassThrough(t *testing.T) {
	h := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
