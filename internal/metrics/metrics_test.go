package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Post("/api/trackers/view", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/trackers/view", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/trackers/view", "POST", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/health", "GET", "200")))
}

func TestGateAndPublishCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.GateRejected("SCB2")
	m.GateRejected("SCB2")
	m.Published("tracker.created", nil)
	m.Published("tracker.created", errors.New("not connected"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.authFailures.WithLabelValues("SCB2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("tracker.created", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("tracker.created", "error")))
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.GateRejected("SCB1")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fleet_admin_gate_rejections_total{code="SCB1"} 1`)
}
