package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"vx-landing/internal/metrics"
	"vx-landing/internal/ratelimit"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/httputil"
	"vx-landing/pkg/logger"
)

// Rejection messages
const (
	MsgContactRateLimited = "Вы отправили слишком много заявок. Подождите 15 минут и попробуйте снова."
	MsgLoginRateLimited   = "Слишком много попыток входа. Попробуйте через 15 минут."
)

// RateLimitOptions configures RateLimit
type RateLimitOptions struct {
	// Message is returned with the 429 response
	Message string
	// Observe counts requests without rejecting any. Development mode uses it
	// for the contact form.
	Observe bool
	// Headers adds the RateLimit-Limit/Remaining/Reset response headers
	Headers bool
	// Now is used to compute RateLimit-Reset; defaults to time.Now
	Now func() time.Time
}

// RateLimit counts every request per client IP with limiter and answers 429
// once the policy is exhausted. Store failures are logged and let the
// request through.
func RateLimit(limiter *ratelimit.Limiter, opts RateLimitOptions, logger *logger.Logger) func(http.Handler) http.Handler {
	policy := limiter.Policy()
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := httputil.ClientIP(r)
			decision, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"policy": policy.Name,
					"ip":     ip,
				}).WithError(err).Error("Rate limit store failed, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if opts.Headers {
				setRateLimitHeaders(w, decision, now())
			}

			if decision.Allowed || opts.Observe {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RateLimited.WithLabelValues(policy.Name).Inc()
			logger.WithFields(map[string]interface{}{
				"policy": policy.Name,
				"ip":     ip,
				"count":  decision.Count,
			}).Warn("Rate limit exceeded")

			retryAfter := secondsUntil(decision.ResetAt, now())
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			writeErrorResponse(w, errors.NewRateLimitError(opts.Message))
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision, now time.Time) {
	h := w.Header()
	h.Set("RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("RateLimit-Remaining", strconv.Itoa(d.Remaining()))
	h.Set("RateLimit-Reset", strconv.Itoa(secondsUntil(d.ResetAt, now)))
}

// secondsUntil rounds the time left until t up to whole seconds
func secondsUntil(t, now time.Time) int {
	if !t.After(now) {
		return 0
	}
	return int(math.Ceil(t.Sub(now).Seconds()))
}
