package middleware

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"vx-landing/internal/domain"
	"vx-landing/pkg/logger"
)

type recordingAnalytics struct {
	mu     sync.Mutex
	visits []domain.VisitRequest
	err    error
}

func (a *recordingAnalytics) TrackVisit(_ context.Context, visit domain.VisitRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.visits = append(a.visits, visit)
	return a.err
}

func (a *recordingAnalytics) Report(context.Context, string) (*domain.AnalyticsReport, error) {
	return &domain.AnalyticsReport{}, nil
}

func (a *recordingAnalytics) TodayVisits(context.Context) (int, error) {
	return len(a.visits), nil
}

func TestIsBot(t *testing.T) {
	assert.True(t, IsBot("Mozilla/5.0 (compatible; Googlebot/2.1)"))
	assert.True(t, IsBot("YandexSpider"))
	assert.True(t, IsBot("some-CRAWLER"))
	assert.False(t, IsBot("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"))
	assert.False(t, IsBot(""))
}

func TestTrackVisits(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		target      string
		userAgent   string
		expectTrack bool
	}{
		{name: "landing page", method: http.MethodGet, target: "/", userAgent: "Mozilla/5.0", expectTrack: true},
		{name: "landing page with query", method: http.MethodGet, target: "/?utm_source=vk", userAgent: "Mozilla/5.0", expectTrack: true},
		{name: "bot", method: http.MethodGet, target: "/", userAgent: "Googlebot/2.1"},
		{name: "asset", method: http.MethodGet, target: "/styles.css", userAgent: "Mozilla/5.0"},
		{name: "admin", method: http.MethodGet, target: "/admin/", userAgent: "Mozilla/5.0"},
		{name: "api", method: http.MethodGet, target: "/api/settings", userAgent: "Mozilla/5.0"},
		{name: "post", method: http.MethodPost, target: "/", userAgent: "Mozilla/5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analytics := &recordingAnalytics{}
			served := false
			handler := TrackVisits(analytics, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				served = true
			}))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.RemoteAddr = "203.0.113.5:1234"
			req.Header.Set("User-Agent", tt.userAgent)
			req.Header.Set("Referer", "https://www.google.com/")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.True(t, served)
			if !tt.expectTrack {
				assert.Empty(t, analytics.visits)
				return
			}
			assert.Equal(t, []domain.VisitRequest{{
				IP:      "203.0.113.5",
				Referer: "https://www.google.com/",
				Host:    "example.com",
			}}, analytics.visits)
		})
	}
}

func TestTrackVisits_SkipsMissingPage(t *testing.T) {
	analytics := &recordingAnalytics{}
	handler := TrackVisits(analytics, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, analytics.visits)
}

func TestTrackVisits_ErrorDoesNotFailPage(t *testing.T) {
	var logs bytes.Buffer
	analytics := &recordingAnalytics{err: stderrors.New("analytics.json: unexpected end of JSON input")}
	handler := TrackVisits(analytics, logger.NewWithWriter("info", &logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), "Analytics tracking error")
}
