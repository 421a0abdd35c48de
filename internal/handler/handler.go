package handler

import (
	"net/http"
	"strings"

	"vx-landing/pkg/errors"
	"vx-landing/pkg/httputil"
	"vx-landing/pkg/logger"
)

// OKResponse is the bare success envelope
type OKResponse struct {
	OK bool `json:"ok"`
}

// writeJSON encodes v, logging encoder failures
func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *logger.Logger) {
	if err := httputil.WriteJSON(w, status, v); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// writeErrorResponse maps err onto the {ok:false, error} envelope. Errors
// that are not AppErrors become a 500 carrying fallback.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, err error, fallback string, logger *logger.Logger) {
	appErr := errors.AsAppError(err, fallback)

	entry := logger.WithFields(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": appErr.StatusCode,
	}).WithError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request error")
	} else {
		entry.Debug("Request rejected")
	}

	if err := httputil.WriteError(w, appErr); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}

// adminURL is the admin panel link placed in staff notifications. SITE_URL
// wins over the request host so links stay stable behind proxies.
func adminURL(siteURL string, r *http.Request) string {
	if siteURL != "" {
		return strings.TrimRight(siteURL, "/") + "/admin/"
	}
	return "https://" + r.Host + "/admin/"
}
