package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vx-landing/internal/container"
	"vx-landing/internal/domain"
	"vx-landing/internal/middleware"
	"vx-landing/internal/service"
	"vx-landing/internal/service/auth"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/httputil"
)

// Admin panel messages
const (
	MsgCredentialsRequired = "Логин и пароль обязательны"
	MsgInvalidCredentials  = "Неверный логин или пароль"
	MsgVerifyNoToken       = "Токен отсутствует"
	MsgContactsCleared     = "Все заявки удалены"
	MsgContactDeleted      = "Заявка удалена"

	msgServerError      = "Ошибка сервера"
	msgDashboardError   = "Ошибка загрузки данных"
	msgContactsError    = "Ошибка загрузки контактов"
	msgClearError       = "Ошибка при удалении заявок"
	msgDeleteError      = "Ошибка при удалении заявки"
	msgSettingsError    = "Ошибка загрузки настроек"
	msgSaveSettingsErr  = "Ошибка сохранения настроек"
	msgAnalyticsError   = "Ошибка загрузки аналитики"
	msgToggleDiscount   = "Ошибка переключения скидки"
	msgTogglePackageErr = "Ошибка переключения пакета"
)

// AdminHandler serves the admin panel API
type AdminHandler struct {
	container *container.Container
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(container *container.Container) *AdminHandler {
	return &AdminHandler{
		container: container,
	}
}

// VerifyResponse is returned by POST /admin/verify
type VerifyResponse struct {
	OK   bool             `json:"ok"`
	User domain.AdminUser `json:"user"`
}

// ClearContactsResponse is returned by DELETE /admin/contacts/clear
type ClearContactsResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Backup  string `json:"backup"`
}

// DeleteContactResponse is returned by DELETE /admin/contacts/{id}
type DeleteContactResponse struct {
	OK             bool           `json:"ok"`
	Message        string         `json:"message"`
	DeletedContact domain.Contact `json:"deletedContact"`
}

// ToggleDiscountResponse is returned by POST /admin/toggle-discount
type ToggleDiscountResponse struct {
	OK              bool `json:"ok"`
	DiscountEnabled bool `json:"discountEnabled"`
}

// TogglePackageRequest is the body of POST /admin/toggle-package
type TogglePackageRequest struct {
	Package string `json:"package"`
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req domain.LoginRequest
	if appErr := httputil.DecodeJSON(w, r, h.container.GetConfig().MaxBodyBytes, &req); appErr != nil {
		writeErrorResponse(w, r, appErr, msgServerError, logger)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeErrorResponse(w, r, errors.NewValidationError(MsgCredentialsRequired), msgServerError, logger)
		return
	}

	token, err := h.container.Services.Auth.Login(r.Context(), req.Username, req.Password)
	if stderrors.Is(err, auth.ErrInvalidCredentials) {
		logger.WithFields(map[string]interface{}{
			"ip":       httputil.ClientIP(r),
			"username": req.Username,
		}).Warn("Failed admin login attempt")
		writeErrorResponse(w, r, errors.NewAuthenticationError(MsgInvalidCredentials), msgServerError, logger)
		return
	}
	if err != nil {
		writeErrorResponse(w, r, err, msgServerError, logger)
		return
	}

	logger.WithField("ip", httputil.ClientIP(r)).Info("Admin login successful")
	writeJSON(w, http.StatusOK, domain.LoginResponse{
		OK:    true,
		Token: token,
		User:  domain.AdminUser{Username: req.Username},
	}, logger)
}

// Verify handles POST /admin/verify. It runs outside AdminAuth and reports
// a missing token with its own wording.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	token := middleware.BearerToken(r)
	if token == "" {
		writeErrorResponse(w, r, errors.NewAuthenticationError(MsgVerifyNoToken), msgServerError, logger)
		return
	}

	admin, err := h.container.Services.Auth.VerifyToken(r.Context(), token)
	if err != nil {
		writeErrorResponse(w, r, errors.NewAuthorizationError(errors.MsgInvalidToken), msgServerError, logger)
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{OK: true, User: *admin}, logger)
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	dashboard, err := h.container.Services.Admin.Dashboard(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err, msgDashboardError, logger)
		return
	}
	writeJSON(w, http.StatusOK, dashboard, logger)
}

// ListContacts handles GET /admin/contacts
func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	contacts, err := h.container.Services.Admin.ListContacts(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err, msgContactsError, logger)
		return
	}
	writeJSON(w, http.StatusOK, contacts, logger)
}

// ClearContacts handles DELETE /admin/contacts/clear
func (h *AdminHandler) ClearContacts(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	backup, err := h.container.Services.Admin.ClearContacts(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err, msgClearError, logger)
		return
	}
	writeJSON(w, http.StatusOK, ClearContactsResponse{
		OK:      true,
		Message: MsgContactsCleared,
		Backup:  backup,
	}, logger)
}

// DeleteContact handles DELETE /admin/contacts/{id}
func (h *AdminHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	deleted, err := h.container.Services.Admin.DeleteContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, r, err, msgDeleteError, logger)
		return
	}
	writeJSON(w, http.StatusOK, DeleteContactResponse{
		OK:             true,
		Message:        MsgContactDeleted,
		DeletedContact: *deleted,
	}, logger)
}

// GetSettings handles GET /admin/settings
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	settings, err := h.container.Services.Admin.Settings(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err, msgSettingsError, logger)
		return
	}
	writeJSON(w, http.StatusOK, settings, logger)
}

// SaveSettings handles POST /admin/settings. The posted document replaces
// the stored one wholesale.
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var settings *domain.Settings
	if appErr := httputil.DecodeJSON(w, r, h.container.GetConfig().MaxBodyBytes, &settings); appErr != nil {
		writeErrorResponse(w, r, appErr, msgSaveSettingsErr, logger)
		return
	}
	if settings == nil {
		writeErrorResponse(w, r, errors.NewMalformedBodyError(nil), msgSaveSettingsErr, logger)
		return
	}

	if err := h.container.Services.Admin.SaveSettings(r.Context(), *settings); err != nil {
		writeErrorResponse(w, r, err, msgSaveSettingsErr, logger)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true}, logger)
}

// Analytics handles GET /admin/analytics?range=today|week|month
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		rangeName = service.RangeWeek
	}

	report, err := h.container.Services.Analytics.Report(r.Context(), rangeName)
	if err != nil {
		writeErrorResponse(w, r, err, msgAnalyticsError, logger)
		return
	}
	writeJSON(w, http.StatusOK, report, logger)
}

// ToggleDiscount handles POST /admin/toggle-discount
func (h *AdminHandler) ToggleDiscount(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	enabled, err := h.container.Services.Admin.ToggleDiscount(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err, msgToggleDiscount, logger)
		return
	}
	writeJSON(w, http.StatusOK, ToggleDiscountResponse{OK: true, DiscountEnabled: enabled}, logger)
}

// TogglePackage handles POST /admin/toggle-package. The response names the
// flipped flag, e.g. {"ok":true,"groupAvailable":false}.
func (h *AdminHandler) TogglePackage(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req TogglePackageRequest
	if appErr := httputil.DecodeJSON(w, r, h.container.GetConfig().MaxBodyBytes, &req); appErr != nil {
		writeErrorResponse(w, r, appErr, msgTogglePackageErr, logger)
		return
	}

	value, err := h.container.Services.Admin.TogglePackage(r.Context(), req.Package)
	if err != nil {
		writeErrorResponse(w, r, err, msgTogglePackageErr, logger)
		return
	}
	response := map[string]interface{}{"ok": true}
	response[req.Package+"Available"] = value
	writeJSON(w, http.StatusOK, response, logger)
}

// PublicSettings handles GET /api/settings
func (h *AdminHandler) PublicSettings(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	settings, err := h.container.Services.Admin.PublicSettings(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err, msgSettingsError, logger)
		return
	}
	writeJSON(w, http.StatusOK, settings, logger)
}
