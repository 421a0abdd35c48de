package handler

import (
	"net/http"

	"vx-landing/internal/container"
	"vx-landing/internal/domain"
	"vx-landing/internal/service"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/httputil"
)

// ContactHandler handles the public contact form
type ContactHandler struct {
	container *container.Container
}

// NewContactHandler creates a new contact handler
func NewContactHandler(container *container.Container) *ContactHandler {
	return &ContactHandler{
		container: container,
	}
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	cfg := h.container.GetConfig()

	var req domain.ContactRequest
	if appErr := httputil.DecodeJSON(w, r, cfg.MaxBodyBytes, &req); appErr != nil {
		writeErrorResponse(w, r, appErr, errors.MsgMalformedBody, logger)
		return
	}

	meta := domain.SubmissionMeta{
		IP:       httputil.ClientIP(r),
		AdminURL: adminURL(cfg.SiteURL, r),
	}
	if _, err := h.container.Services.Contact.Submit(r.Context(), req, meta); err != nil {
		writeErrorResponse(w, r, err, service.MsgContactSaveError, logger)
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true}, logger)
}
