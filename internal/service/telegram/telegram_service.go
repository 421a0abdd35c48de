package telegram

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"vx-landing/internal/domain"
	"vx-landing/internal/metrics"
	"vx-landing/internal/service"
	"vx-landing/pkg/logger"
)

// DefaultAPIURL is the public Bot API endpoint
const DefaultAPIURL = "https://api.telegram.org"

// Callback data understood by the webhook
const (
	CallbackViewContacts  = "view_contacts"
	CallbackMarkProcessed = "mark_processed_"
	CallbackMarkSpam      = "mark_spam_"
	CallbackProcessed     = "processed"
	CallbackSpam          = "spam"
)

// InlineButton is one button of an inline keyboard
type InlineButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// InlineKeyboard is the reply_markup of a bot message
type InlineKeyboard struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

// Chat identifies a conversation
type Chat struct {
	ID int64 `json:"id"`
}

// Message is the subset of a bot message the webhook reads
type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// CallbackQuery is sent when a user presses an inline button
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message,omitempty"`
}

// Update is the payload posted to the bot webhook
type Update struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
	Message       *Message       `json:"message,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Client sends lead notifications through the Telegram Bot API
type Client struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	location   *time.Location
	logger     *logger.Logger
}

// NewClient creates a Bot API client. An empty apiURL selects DefaultAPIURL.
func NewClient(apiURL, token, chatID string, logger *logger.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/"),
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		location: time.Local,
		logger:   logger,
	}
}

var _ service.Notifier = (*Client)(nil)

// WithLocation sets the zone used to print submission times
func (c *Client) WithLocation(loc *time.Location) *Client {
	c.location = loc
	return c
}

// NotifyContact posts a new lead to the staff chat with quick actions
func (c *Client) NotifyContact(ctx context.Context, contact domain.Contact, adminURL string) error {
	payload := map[string]interface{}{
		"chat_id":      c.chatID,
		"text":         c.contactText(contact),
		"parse_mode":   "HTML",
		"reply_markup": contactKeyboard(contact, adminURL),
	}
	err := c.call(ctx, "sendMessage", payload)
	if err != nil {
		metrics.Notifications.WithLabelValues("error").Inc()
		return err
	}
	metrics.Notifications.WithLabelValues("sent").Inc()
	return nil
}

// ShowContactsSummary rewrites a notification into lead statistics
func (c *Client) ShowContactsSummary(ctx context.Context, chatID int64, messageID int, summary domain.ContactSummary, adminURL string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       summaryText(summary),
		"parse_mode": "HTML",
		"reply_markup": InlineKeyboard{InlineKeyboard: [][]InlineButton{
			{{Text: "🔗 Открыть админ панель", URL: adminURL}},
		}},
	}
	return c.call(ctx, "editMessageText", payload)
}

// MarkMessage replaces a notification's keyboard with one status button
func (c *Client) MarkMessage(ctx context.Context, chatID int64, messageID int, label, callback string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"message_id": messageID,
		"reply_markup": InlineKeyboard{InlineKeyboard: [][]InlineButton{
			{{Text: label, CallbackData: callback}},
		}},
	}
	return c.call(ctx, "editMessageReplyMarkup", payload)
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; do not let it reach the logs.
		return fmt.Errorf("failed to call Telegram %s: %w", method, redact(err, c.token))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var apiResp apiResponse
	_ = json.Unmarshal(respBody, &apiResp)
	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		return fmt.Errorf("Telegram %s returned status %d: %s", method, resp.StatusCode, apiResp.Description)
	}

	c.logger.WithField("method", method).Debug("Telegram call succeeded")
	return nil
}

func (c *Client) contactText(contact domain.Contact) string {
	var b strings.Builder
	b.WriteString("🎵 <b>Новая заявка VX School</b>\n\n")
	fmt.Fprintf(&b, "👤 <b>Имя:</b> %s\n", escape(contact.Name))
	fmt.Fprintf(&b, "📱 <b>Telegram:</b> %s\n", escape(contact.Telegram))
	if contact.Tariff != "" {
		fmt.Fprintf(&b, "📋 <b>Тариф:</b> %s\n", escape(contact.Tariff))
	}
	if contact.Message != "" {
		fmt.Fprintf(&b, "\n💬 <b>Сообщение:</b>\n<i>%s</i>\n", escape(contact.Message))
	}
	fmt.Fprintf(&b, "\n🌐 <b>IP:</b> <code>%s</code>\n", escape(contact.IP))
	fmt.Fprintf(&b, "⏰ <b>Время:</b> %s\n\n", contact.CreatedAt.In(c.location).Format("02.01.2006, 15:04:05"))
	fmt.Fprintf(&b, "<b>ID заявки:</b> <code>%s</code>", escape(contact.ID))
	return b.String()
}

func contactKeyboard(contact domain.Contact, adminURL string) InlineKeyboard {
	return InlineKeyboard{InlineKeyboard: [][]InlineButton{
		{{Text: "💬 Написать в Telegram", URL: "https://t.me/" + strings.Replace(contact.Telegram, "@", "", 1)}},
		{
			{Text: "📊 Админ панель", URL: adminURL},
			{Text: "📋 Все заявки", CallbackData: CallbackViewContacts},
		},
		{
			{Text: "✅ Обработано", CallbackData: CallbackMarkProcessed + contact.ID},
			{Text: "❌ Спам", CallbackData: CallbackMarkSpam + contact.ID},
		},
	}}
}

func summaryText(summary domain.ContactSummary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Статистика заявок</b>\n\n")
	fmt.Fprintf(&b, "📅 <b>Сегодня:</b> %d\n", summary.Today)
	fmt.Fprintf(&b, "📈 <b>За неделю:</b> %d\n", summary.Week)
	fmt.Fprintf(&b, "📋 <b>Всего:</b> %d\n\n", summary.Total)
	fmt.Fprintf(&b, "<b>Последние %d заявок:</b>", len(summary.Latest))
	for _, contact := range summary.Latest {
		tariff := contact.Tariff
		if tariff == "" {
			tariff = "Без тарифа"
		}
		fmt.Fprintf(&b, "\n• %s (@%s) - %s",
			escape(contact.Name), escape(strings.Replace(contact.Telegram, "@", "", 1)), escape(tariff))
	}
	return b.String()
}

func escape(s string) string {
	return html.EscapeString(s)
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "<redacted>"))
}

// NoopNotifier discards notifications. It is used when no bot credentials
// are configured.
type NoopNotifier struct {
	logger *logger.Logger
}

// NewNoopNotifier creates a notifier that only logs
func NewNoopNotifier(logger *logger.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

var _ service.Notifier = (*NoopNotifier)(nil)

// NotifyContact implements service.Notifier
func (n *NoopNotifier) NotifyContact(ctx context.Context, contact domain.Contact, adminURL string) error {
	metrics.Notifications.WithLabelValues("skipped").Inc()
	n.logger.WithField("contact_id", contact.ID).Debug("Telegram disabled, notification skipped")
	return nil
}

// ShowContactsSummary implements service.Notifier
func (n *NoopNotifier) ShowContactsSummary(ctx context.Context, chatID int64, messageID int, summary domain.ContactSummary, adminURL string) error {
	return nil
}

// MarkMessage implements service.Notifier
func (n *NoopNotifier) MarkMessage(ctx context.Context, chatID int64, messageID int, label, callback string) error {
	return nil
}
