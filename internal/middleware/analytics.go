package middleware

import (
	"net/http"
	"regexp"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"vx-landing/internal/domain"
	"vx-landing/internal/service"
	"vx-landing/pkg/httputil"
	"vx-landing/pkg/logger"
)

var botUserAgent = regexp.MustCompile(`(?i)bot|crawler|spider|crawling`)

// IsBot reports whether userAgent looks like a crawler
func IsBot(userAgent string) bool {
	return botUserAgent.MatchString(userAgent)
}

// TrackVisits records landing page views. Only GET / from non-bot user
// agents that was actually served is counted; tracking errors are logged
// and never change the response.
func TrackVisits(analytics service.AnalyticsService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/" || IsBot(r.UserAgent()) {
				next.ServeHTTP(w, r)
				return
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			// Status 0 means the handler wrote nothing, which net/http sends as 200.
			if ww.Status() >= http.StatusBadRequest {
				return
			}
			visit := domain.VisitRequest{
				IP:      httputil.ClientIP(r),
				Referer: r.Referer(),
				Host:    r.Host,
			}
			if err := analytics.TrackVisit(r.Context(), visit); err != nil {
				logger.WithError(err).Error("Analytics tracking error")
			}
		})
	}
}
