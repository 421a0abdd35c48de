package handler

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"vx-landing/internal/container"
	"vx-landing/internal/service/telegram"
	"vx-landing/pkg/errors"
	"vx-landing/pkg/httputil"
	"vx-landing/pkg/logger"
)

// Labels shown once a notification has been handled
const (
	LabelProcessed = "✅ Заявка обработана"
	LabelSpam      = "🗑️ Помечено как спам"
)

// TelegramSecretHeader carries the secret token registered with setWebhook
const TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler handles Telegram bot callbacks
type WebhookHandler struct {
	container *container.Container
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(container *container.Container) *WebhookHandler {
	return &WebhookHandler{
		container: container,
	}
}

// Telegram handles POST /webhook/telegram. Telegram retries anything but a
// 2xx, so processing errors are logged and the update is still acknowledged.
func (h *WebhookHandler) Telegram(w http.ResponseWriter, r *http.Request) {
	log := h.container.GetLogger().WithField("component", "telegram_webhook")
	cfg := h.container.GetConfig()

	if !h.authorized(r) {
		log.WithField("ip", httputil.ClientIP(r)).Warn("Webhook call with a wrong secret token")
		writeErrorResponse(w, r, errors.NewAuthenticationError(errors.MsgInvalidToken), errors.MsgInternal, log)
		return
	}

	var update telegram.Update
	if appErr := httputil.DecodeJSON(w, r, cfg.MaxBodyBytes, &update); appErr != nil {
		log.WithError(appErr).Warn("Unreadable webhook update")
		writeJSON(w, http.StatusOK, OKResponse{OK: true}, log)
		return
	}

	if query := update.CallbackQuery; query != nil && query.Message != nil {
		if chatID := strconv.FormatInt(query.Message.Chat.ID, 10); cfg.TelegramChatID != "" && chatID != cfg.TelegramChatID {
			log.WithField("chat_id", chatID).Warn("Ignoring callback from a foreign chat")
		} else {
			h.handleCallback(r, query, log)
		}
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true}, log)
}

// authorized checks the secret token. Without a configured secret only
// development mode accepts updates.
func (h *WebhookHandler) authorized(r *http.Request) bool {
	cfg := h.container.GetConfig()
	if cfg.TelegramWebhookSecret == "" {
		return cfg.IsDevelopment()
	}
	got := r.Header.Get(TelegramSecretHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(cfg.TelegramWebhookSecret)) == 1
}

func (h *WebhookHandler) handleCallback(r *http.Request, query *telegram.CallbackQuery, log *logger.Logger) {
	ctx := r.Context()
	services := h.container.Services
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	log = log.WithFields(map[string]interface{}{
		"callback":   query.Data,
		"chat_id":    chatID,
		"message_id": messageID,
	})

	switch {
	case query.Data == telegram.CallbackViewContacts:
		summary, err := services.Contact.Summary(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to build contacts summary")
			return
		}
		if err := services.Notifier.ShowContactsSummary(ctx, chatID, messageID, *summary, adminURL(h.container.GetConfig().SiteURL, r)); err != nil {
			log.WithError(err).Error("Failed to show contacts summary")
		}

	case strings.HasPrefix(query.Data, telegram.CallbackMarkProcessed):
		id := strings.TrimPrefix(query.Data, telegram.CallbackMarkProcessed)
		if _, err := services.Contact.MarkProcessed(ctx, id); err != nil {
			log.WithError(err).WithField("contact_id", id).Warn("Failed to mark contact as processed")
		}
		if err := services.Notifier.MarkMessage(ctx, chatID, messageID, LabelProcessed, telegram.CallbackProcessed); err != nil {
			log.WithError(err).Error("Failed to update notification keyboard")
		}

	case strings.HasPrefix(query.Data, telegram.CallbackMarkSpam):
		id := strings.TrimPrefix(query.Data, telegram.CallbackMarkSpam)
		if _, err := services.Contact.MarkSpam(ctx, id); err != nil {
			log.WithError(err).WithField("contact_id", id).Warn("Failed to mark contact as spam")
		}
		if err := services.Notifier.MarkMessage(ctx, chatID, messageID, LabelSpam, telegram.CallbackSpam); err != nil {
			log.WithError(err).Error("Failed to update notification keyboard")
		}

	default:
		log.Debug("Ignoring callback")
	}
}
