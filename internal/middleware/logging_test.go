package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"vx-landing/internal/metrics"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/logger"
)

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewWithWriter("info", &logs)

	handler := RequestID()(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], `"level":"info"`)
		assert.Contains(t, lines[0], `"status":200`)
		assert.Contains(t, lines[0], `"path":"/health"`)
		assert.Contains(t, lines[0], `"request_id"`)
		assert.Contains(t, lines[1], `"level":"warn"`)
		assert.Contains(t, lines[1], `"status":404`)
	}
}

func TestRecoverer(t *testing.T) {
	var logs bytes.Buffer
	handler := Recoverer(logger.NewWithWriter("info", &logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("settings document vanished")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"`+errors.MsgInternal+`"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "settings document vanished")
}

func TestMetrics_RoutePatternLabels(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Delete("/admin/contacts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	routed := metrics.HTTPRequests.WithLabelValues(http.MethodDelete, "/admin/contacts/{id}", "200")
	unmatched := metrics.HTTPRequests.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	baseRouted := testutil.ToFloat64(routed)
	baseUnmatched := testutil.ToFloat64(unmatched)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/admin/contacts/abc123", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/admin/contacts/def456", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	assert.Equal(t, baseRouted+2, testutil.ToFloat64(routed))
	assert.Equal(t, baseUnmatched+1, testutil.ToFloat64(unmatched))
}
