package middleware

import (
	"net/http"

	"vx-landing/pkg/httputil"
)

// ClientIP resolves the caller address once per request. Forwarding headers
// are only read for the configured number of trusted proxy hops, so a client
// cannot pick its own rate-limit key.
func ClientIP(trustedHops int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := httputil.ResolveClientIP(r, trustedHops)
			next.ServeHTTP(w, r.WithContext(httputil.WithClientIP(r.Context(), ip)))
		})
	}
}
