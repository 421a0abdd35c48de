package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"vx-landing/internal/domain"
	"vx-landing/internal/service"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/httputil"
	"vx-landing/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// AdminContextKey is the key for the authenticated admin in context
	AdminContextKey ContextKey = "admin"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AdminAuth rejects requests without a valid admin session token. A missing
// token is a 401, an invalid or expired one a 403.
func AdminAuth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError(errors.MsgNoToken))
				return
			}

			ctx := r.Context()
			admin, err := authService.VerifyToken(ctx, token)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"ip":   httputil.ClientIP(r),
					"path": r.URL.Path,
				}).WithError(err).Warn("Invalid admin token")
				writeErrorResponse(w, errors.NewAuthorizationError(errors.MsgInvalidToken))
				return
			}

			ctx = context.WithValue(ctx, AdminContextKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext returns the admin stored by AdminAuth
func AdminFromContext(ctx context.Context) (*domain.AdminUser, bool) {
	admin, ok := ctx.Value(AdminContextKey).(*domain.AdminUser)
	return admin, ok
}

// RequestID assigns every request an ID, reusing a well-formed inbound
// X-Request-ID, and echoes it on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			w.Header().Set(RequestIDHeader, requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request ID stored by RequestID, or ""
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// writeErrorResponse writes the {ok:false, error} envelope
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError) {
	_ = httputil.WriteError(w, appErr)
}
